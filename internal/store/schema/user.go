package schema

import (
	"time"
)

// User represents the users table - one row per wallet that has ever touched the
// referral flow, either as a buyer or as a referrer. Rows are created lazily on
// the first referral interaction and never deleted.
type User struct {
	// Wallet is the TON friendly address and primary key
	Wallet string `gorm:"column:wallet;primaryKey;type:text"`
	// Referrer is the locked referral address. Write-once: set at most once, then
	// permanent (first-writer-wins). Never equals Wallet.
	Referrer *string `gorm:"column:referrer;type:text"`
	// CreatedAt is the timestamp when this row was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
