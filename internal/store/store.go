package store

import (
	"context"

	"github.com/magtcoin/presale-backend/internal/store/schema"
)

// CreatePurchaseInput holds the data for appending one purchase row. All fields
// are assumed to be validated by the caller; the store only persists.
type CreatePurchaseInput struct {
	// TS is the server-assigned purchase time in milliseconds since epoch
	TS int64
	// Address is the buyer address, nil for anonymous entries
	Address *string
	// USD is the dollar value of the purchase
	USD float64
	// Tokens is the token quantity of the purchase
	Tokens float64
	// Ref is the resolved referral address credited for this purchase, nil if none
	Ref *string
}

// PurchaseTotals holds aggregate sums over the whole ledger
type PurchaseTotals struct {
	// TotalUSD is the sum of usd across all purchases
	TotalUSD float64
	// TotalTokens is the sum of tokens across all purchases
	TotalTokens float64
	// Buyers is the count of distinct non-null buyer addresses
	Buyers int64
}

// Leader is one leaderboard entry: a referrer and the USD volume credited to it
type Leader struct {
	Address string
	USD     float64
}

// WalletTotals holds per-wallet aggregates for the my-stats endpoint
type WalletTotals struct {
	// BoughtTokens is the sum of tokens on purchases made by the wallet
	BoughtTokens float64
	// ReferredTokens is the sum of tokens on purchases crediting the wallet as referrer
	ReferredTokens float64
}

// Store defines the interface for database operations. Two implementations
// exist: pgStore (PostgreSQL via GORM) and memoryStore (in-process fallback
// for local development and tests).
type Store interface {
	// BindReferral ensures both wallets exist and sets wallet's referrer to ref
	// if and only if it is currently unset. The whole sequence runs atomically:
	// of two concurrent binds for the same wallet exactly one wins. Returns
	// whether a referrer is now associated with the wallet (true whether this
	// call set it or a prior one did).
	BindReferral(ctx context.Context, wallet, ref string) (bool, error)

	// GetReferrer ensures the wallet row exists (insert-if-absent, idempotent)
	// and returns its current referrer, nil when unset.
	GetReferrer(ctx context.Context, wallet string) (*string, error)

	// CreatePurchase appends one immutable purchase row.
	CreatePurchase(ctx context.Context, input CreatePurchaseInput) error

	// RecentPurchases returns up to limit purchases, newest first by ts with id
	// as a stable tiebreak.
	RecentPurchases(ctx context.Context, limit int) ([]schema.Purchase, error)

	// GetPurchaseTotals sums usd and tokens across all rows and counts distinct
	// non-null buyer addresses. An empty ledger yields zeros, not an error.
	GetPurchaseTotals(ctx context.Context) (PurchaseTotals, error)

	// ReferralLeaders groups purchases by ref and returns up to limit entries
	// ordered by USD volume descending, excluding rows whose ref is null or the
	// "-" sentinel.
	ReferralLeaders(ctx context.Context, limit int) ([]Leader, error)

	// GetWalletTotals returns the wallet's own purchase volume and the volume
	// credited to it as a referrer.
	GetWalletTotals(ctx context.Context, wallet string) (WalletTotals, error)
}
