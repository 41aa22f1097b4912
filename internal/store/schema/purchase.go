package schema

// Purchase represents the purchases table - an append-only ledger of
// client-reported purchase events. Rows are immutable once written; no update
// or delete path exists.
type Purchase struct {
	// ID is the internal database primary key, monotonically increasing
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TS is the server-assigned purchase time in milliseconds since epoch
	TS int64 `gorm:"column:ts;not null;index:idx_purchases_ts,sort:desc"`
	// Address is the buyer address; nil for anonymous or demo entries
	Address *string `gorm:"column:address;type:text;index"`
	// USD is the dollar value of the purchase at the time it was reported
	USD float64 `gorm:"column:usd;not null"`
	// Tokens is the token quantity of the purchase
	Tokens float64 `gorm:"column:tokens;not null"`
	// Ref is the referral address credited for this purchase, snapshotted at
	// insert time. Denormalized: a later change to the buyer's locked referrer
	// cannot happen, so this never drifts.
	Ref *string `gorm:"column:ref;type:text;index"`
}

// TableName specifies the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}
