package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/magtcoin/presale-backend/internal/domain"
	"github.com/magtcoin/presale-backend/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// AutoMigrate creates or updates the users and purchases tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schema.User{}, &schema.Purchase{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. It accesses the underlying *sql.DB and sets the pool
// configuration. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// BindReferral ensures both users exist and locks wallet's referrer to ref if
// it is still unset, all inside a single transaction. The conditional UPDATE
// with "referrer IS NULL" is what makes concurrent binds safe: the database
// serializes the two updates, the second one matches zero rows.
func (s *pgStore) BindReferral(ctx context.Context, wallet, ref string) (bool, error) {
	var locked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Insert in lexicographic order so concurrent mutual binds take
		// their row locks in the same order and cannot deadlock.
		users := []schema.User{{Wallet: wallet}, {Wallet: ref}}
		if ref < wallet {
			users[0], users[1] = users[1], users[0]
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet"}},
			DoNothing: true,
		}).Create(&users).Error; err != nil {
			return fmt.Errorf("failed to ensure user rows: %w", err)
		}

		if err := tx.Model(&schema.User{}).
			Where("wallet = ? AND referrer IS NULL", wallet).
			Update("referrer", ref).Error; err != nil {
			return fmt.Errorf("failed to set referrer: %w", err)
		}

		var user schema.User
		if err := tx.Where("wallet = ?", wallet).First(&user).Error; err != nil {
			return fmt.Errorf("failed to read back user: %w", err)
		}
		locked = user.Referrer != nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return locked, nil
}

// GetReferrer returns the wallet's current referrer, creating the user row on
// first contact. The insert-if-absent makes repeated lookups on an unknown
// wallet safe and idempotent.
func (s *pgStore) GetReferrer(ctx context.Context, wallet string) (*string, error) {
	var referrer *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := schema.User{Wallet: wallet}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet"}},
			DoNothing: true,
		}).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to ensure user row: %w", err)
		}

		if err := tx.Where("wallet = ?", wallet).First(&user).Error; err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		referrer = user.Referrer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return referrer, nil
}

// CreatePurchase appends one purchase row. Plain insert, no conflict handling:
// the ledger has no natural key beyond the serial id.
func (s *pgStore) CreatePurchase(ctx context.Context, input CreatePurchaseInput) error {
	purchase := schema.Purchase{
		TS:      input.TS,
		Address: input.Address,
		USD:     input.USD,
		Tokens:  input.Tokens,
		Ref:     input.Ref,
	}

	if err := s.db.WithContext(ctx).Create(&purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

// RecentPurchases returns up to limit purchases ordered newest first
func (s *pgStore) RecentPurchases(ctx context.Context, limit int) ([]schema.Purchase, error) {
	var purchases []schema.Purchase
	err := s.db.WithContext(ctx).
		Order("ts DESC, id DESC").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent purchases: %w", err)
	}

	return purchases, nil
}

// GetPurchaseTotals sums the whole ledger in a single aggregate query
func (s *pgStore) GetPurchaseTotals(ctx context.Context) (PurchaseTotals, error) {
	var result struct {
		TotalUSD    float64
		TotalTokens float64
		Buyers      int64
	}

	err := s.db.WithContext(ctx).
		Model(&schema.Purchase{}).
		Select("COALESCE(SUM(usd), 0) AS total_usd, COALESCE(SUM(tokens), 0) AS total_tokens, COUNT(DISTINCT address) AS buyers").
		Scan(&result).Error
	if err != nil {
		return PurchaseTotals{}, fmt.Errorf("failed to get purchase totals: %w", err)
	}

	return PurchaseTotals{
		TotalUSD:    result.TotalUSD,
		TotalTokens: result.TotalTokens,
		Buyers:      result.Buyers,
	}, nil
}

// ReferralLeaders groups purchases by referrer, excluding null and sentinel refs
func (s *pgStore) ReferralLeaders(ctx context.Context, limit int) ([]Leader, error) {
	var rows []struct {
		Ref string
		USD float64
	}

	err := s.db.WithContext(ctx).
		Model(&schema.Purchase{}).
		Select("ref, SUM(usd) AS usd").
		Where("ref IS NOT NULL AND ref <> ?", domain.RefSentinel).
		Group("ref").
		Order("usd DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get referral leaders: %w", err)
	}

	leaders := make([]Leader, 0, len(rows))
	for _, row := range rows {
		leaders = append(leaders, Leader{Address: row.Ref, USD: row.USD})
	}

	return leaders, nil
}

// GetWalletTotals sums the wallet's own purchases and the purchases crediting it
func (s *pgStore) GetWalletTotals(ctx context.Context, wallet string) (WalletTotals, error) {
	var bought float64
	err := s.db.WithContext(ctx).
		Model(&schema.Purchase{}).
		Select("COALESCE(SUM(tokens), 0)").
		Where("address = ?", wallet).
		Scan(&bought).Error
	if err != nil {
		return WalletTotals{}, fmt.Errorf("failed to get bought totals: %w", err)
	}

	var referred float64
	err = s.db.WithContext(ctx).
		Model(&schema.Purchase{}).
		Select("COALESCE(SUM(tokens), 0)").
		Where("ref = ?", wallet).
		Scan(&referred).Error
	if err != nil {
		return WalletTotals{}, fmt.Errorf("failed to get referred totals: %w", err)
	}

	return WalletTotals{BoughtTokens: bought, ReferredTokens: referred}, nil
}
