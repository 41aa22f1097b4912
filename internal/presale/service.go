// Package presale holds the business logic between the REST layer and the
// store: referral binding, purchase recording with referral resolution, and
// the derived statistics snapshots.
package presale

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/magtcoin/presale-backend/internal/domain"
	"github.com/magtcoin/presale-backend/internal/store"
	"github.com/magtcoin/presale-backend/internal/store/schema"
)

// Config holds the static presale parameters
type Config struct {
	// TotalSupply is the total token supply offered in the presale
	TotalSupply float64
	// ReferralPool is the token pool reserved for referral bonuses
	ReferralPool float64
	// MinUSD and MaxUSD bound the accepted per-purchase USD value
	MinUSD float64
	MaxUSD float64
	// RefBonusPercent is the referral bonus as a percentage of referred tokens
	RefBonusPercent float64
}

// Service implements the presale operations on top of a Store
type Service struct {
	store store.Store
	cfg   Config
	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewService creates a new presale service
func NewService(s store.Store, cfg Config) *Service {
	return &Service{store: s, cfg: cfg, now: time.Now}
}

// BindResult reports the outcome of a referral bind
type BindResult struct {
	// Locked is true when a referrer is now associated with the wallet,
	// whether this call set it or an earlier one did
	Locked bool
}

// BindReferral validates both addresses and locks wallet's referrer to ref if
// it is still unset. First writer wins; later binds are harmless no-ops.
func (s *Service) BindReferral(ctx context.Context, wallet, ref string) (BindResult, error) {
	if !domain.ValidAddress(wallet) || !domain.ValidAddress(ref) || wallet == ref {
		return BindResult{}, domain.ErrInvalidAddress
	}

	locked, err := s.store.BindReferral(ctx, wallet, ref)
	if err != nil {
		return BindResult{}, fmt.Errorf("bind referral: %w", err)
	}

	return BindResult{Locked: locked}, nil
}

// LookupReferrer returns the wallet's locked referrer, nil when none is set.
// The lookup creates the user row on first contact so the wallet can later
// acquire a referrer even if it bought first.
func (s *Service) LookupReferrer(ctx context.Context, wallet string) (*string, error) {
	if !domain.ValidAddress(wallet) {
		return nil, domain.ErrInvalidAddress
	}

	referrer, err := s.store.GetReferrer(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("lookup referrer: %w", err)
	}

	return referrer, nil
}

// PurchaseInput is one client-reported purchase
type PurchaseInput struct {
	USD     float64
	Tokens  float64
	Address string
	RefHint string
}

// RecordPurchase validates the report and appends it to the ledger with a
// server-assigned timestamp and the resolved referral credit.
//
// The amounts are client-reported and are not verified on chain: the ledger is
// a display-only mirror, the smart contract stays authoritative for transfers
// and bonus accounting.
func (s *Service) RecordPurchase(ctx context.Context, input PurchaseInput) error {
	if input.USD <= 0 || input.Tokens <= 0 {
		return domain.ErrInvalidAmount
	}
	if input.USD < s.cfg.MinUSD || input.USD > s.cfg.MaxUSD {
		return domain.ErrAmountOutOfRange
	}

	var address *string
	if input.Address != "" {
		if !domain.ValidAddress(input.Address) {
			return domain.ErrInvalidAddress
		}
		address = &input.Address
	}

	ref, err := s.resolveRef(ctx, address, input.RefHint)
	if err != nil {
		return err
	}

	err = s.store.CreatePurchase(ctx, store.CreatePurchaseInput{
		TS:      s.now().UnixMilli(),
		Address: address,
		USD:     input.USD,
		Tokens:  input.Tokens,
		Ref:     ref,
	})
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}

	return nil
}

// resolveRef picks the referral credit for a purchase. A locked referrer from
// the store takes precedence over the client-supplied hint; the hint only
// counts when it is a valid address distinct from the buyer. The GetReferrer
// call also creates the buyer's user row, which is intentional.
func (s *Service) resolveRef(ctx context.Context, address *string, refHint string) (*string, error) {
	if address != nil {
		locked, err := s.store.GetReferrer(ctx, *address)
		if err != nil {
			return nil, fmt.Errorf("resolve referrer: %w", err)
		}
		if locked != nil {
			return locked, nil
		}
		if domain.ValidAddress(refHint) && refHint != *address {
			return &refHint, nil
		}
		return nil, nil
	}

	if domain.ValidAddress(refHint) {
		return &refHint, nil
	}
	return nil, nil
}

// Feed returns up to limit recent purchases, newest first. The limit is
// clamped to [1, 100] with a default of 50.
func (s *Service) Feed(ctx context.Context, limit int) ([]schema.Purchase, error) {
	purchases, err := s.store.RecentPurchases(ctx, clampLimit(limit, 50))
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return purchases, nil
}

// Snapshot is the public presale statistics view
type Snapshot struct {
	SoldTokens   float64
	TotalSupply  float64
	RaisedUSD    float64
	Buyers       int64
	ReferralPool float64
}

// Snapshot combines ledger totals with the static presale configuration. It
// holds no state of its own; an empty ledger yields zeros.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	totals, err := s.store.GetPurchaseTotals(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	return Snapshot{
		SoldTokens:   totals.TotalTokens,
		TotalSupply:  s.cfg.TotalSupply,
		RaisedUSD:    totals.TotalUSD,
		Buyers:       totals.Buyers,
		ReferralPool: s.cfg.ReferralPool,
	}, nil
}

// Leaders returns up to limit referrers ordered by credited USD volume,
// excluding null and sentinel refs. The limit is clamped to [1, 100] with a
// default of 20.
func (s *Service) Leaders(ctx context.Context, limit int) ([]store.Leader, error) {
	leaders, err := s.store.ReferralLeaders(ctx, clampLimit(limit, 20))
	if err != nil {
		return nil, fmt.Errorf("leaders: %w", err)
	}
	return leaders, nil
}

// WalletStats is the per-wallet derived view for the my-stats endpoint
type WalletStats struct {
	// BoughtTokens is the wallet's own purchase volume, floor-rounded
	BoughtTokens int64
	// ReferralTokens is the bonus earned from referred purchases, floor-rounded
	ReferralTokens int64
}

// WalletStats derives floor-rounded integer totals for a wallet: tokens it
// bought and the referral bonus earned on purchases crediting it.
func (s *Service) WalletStats(ctx context.Context, wallet string) (WalletStats, error) {
	if !domain.ValidAddress(wallet) {
		return WalletStats{}, domain.ErrInvalidAddress
	}

	totals, err := s.store.GetWalletTotals(ctx, wallet)
	if err != nil {
		return WalletStats{}, fmt.Errorf("wallet stats: %w", err)
	}

	return WalletStats{
		BoughtTokens:   int64(math.Floor(totals.BoughtTokens)),
		ReferralTokens: int64(math.Floor(totals.ReferredTokens * s.cfg.RefBonusPercent / 100)),
	}, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
