package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/magtcoin/presale-backend/internal/domain"
	"github.com/magtcoin/presale-backend/internal/store/schema"
)

// memoryStore is an in-process implementation of Store used for local
// development and tests. It mirrors the transactional semantics of pgStore
// under a single mutex; state is lost on restart.
type memoryStore struct {
	mu        sync.RWMutex
	users     map[string]*schema.User
	purchases []schema.Purchase
	nextID    int64
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() Store {
	return &memoryStore{
		users:  make(map[string]*schema.User),
		nextID: 1,
	}
}

// ensureUser inserts a user row if absent. Caller must hold the write lock.
func (s *memoryStore) ensureUser(wallet string) *schema.User {
	if user, ok := s.users[wallet]; ok {
		return user
	}
	user := &schema.User{Wallet: wallet, CreatedAt: time.Now().UTC()}
	s.users[wallet] = user
	return user
}

func (s *memoryStore) BindReferral(_ context.Context, wallet, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.ensureUser(wallet)
	s.ensureUser(ref)

	if user.Referrer == nil {
		r := ref
		user.Referrer = &r
	}

	return user.Referrer != nil, nil
}

func (s *memoryStore) GetReferrer(_ context.Context, wallet string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.ensureUser(wallet)
	if user.Referrer == nil {
		return nil, nil
	}
	r := *user.Referrer
	return &r, nil
}

func (s *memoryStore) CreatePurchase(_ context.Context, input CreatePurchaseInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchase := schema.Purchase{
		ID:      s.nextID,
		TS:      input.TS,
		Address: copyPtr(input.Address),
		USD:     input.USD,
		Tokens:  input.Tokens,
		Ref:     copyPtr(input.Ref),
	}
	s.nextID++
	s.purchases = append(s.purchases, purchase)

	return nil
}

func (s *memoryStore) RecentPurchases(_ context.Context, limit int) ([]schema.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := make([]schema.Purchase, len(s.purchases))
	copy(sorted, s.purchases)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TS != sorted[j].TS {
			return sorted[i].TS > sorted[j].TS
		}
		return sorted[i].ID > sorted[j].ID
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted, nil
}

func (s *memoryStore) GetPurchaseTotals(_ context.Context) (PurchaseTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals PurchaseTotals
	buyers := make(map[string]struct{})
	for _, p := range s.purchases {
		totals.TotalUSD += p.USD
		totals.TotalTokens += p.Tokens
		if p.Address != nil {
			buyers[*p.Address] = struct{}{}
		}
	}
	totals.Buyers = int64(len(buyers))

	return totals, nil
}

func (s *memoryStore) ReferralLeaders(_ context.Context, limit int) ([]Leader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRef := make(map[string]float64)
	for _, p := range s.purchases {
		if p.Ref == nil || *p.Ref == domain.RefSentinel {
			continue
		}
		byRef[*p.Ref] += p.USD
	}

	leaders := make([]Leader, 0, len(byRef))
	for ref, usd := range byRef {
		leaders = append(leaders, Leader{Address: ref, USD: usd})
	}
	sort.Slice(leaders, func(i, j int) bool {
		if leaders[i].USD != leaders[j].USD {
			return leaders[i].USD > leaders[j].USD
		}
		return leaders[i].Address < leaders[j].Address
	})

	if limit < len(leaders) {
		leaders = leaders[:limit]
	}

	return leaders, nil
}

func (s *memoryStore) GetWalletTotals(_ context.Context, wallet string) (WalletTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals WalletTotals
	for _, p := range s.purchases {
		if p.Address != nil && *p.Address == wallet {
			totals.BoughtTokens += p.Tokens
		}
		if p.Ref != nil && *p.Ref == wallet {
			totals.ReferredTokens += p.Tokens
		}
	}

	return totals, nil
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
