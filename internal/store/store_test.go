package store

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magtcoin/presale-backend/internal/domain"
)

// testAddr builds a syntactically valid TON friendly address from a seed byte
func testAddr(seed byte) string {
	return "EQ" + strings.Repeat(string(seed), 46)
}

func strPtr(s string) *string {
	return &s
}

// RunStoreTests runs the shared store test suite against an implementation.
// initDB must return a fresh, empty store for each test.
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"BindReferralFirstWriterWins", testBindReferralFirstWriterWins},
		{"BindReferralRepeatSameRef", testBindReferralRepeatSameRef},
		{"GetReferrerIdempotentCreate", testGetReferrerIdempotentCreate},
		{"GetReferrerAfterBind", testGetReferrerAfterBind},
		{"RecentPurchasesOrdering", testRecentPurchasesOrdering},
		{"PurchaseTotals", testPurchaseTotals},
		{"PurchaseTotalsEmpty", testPurchaseTotalsEmpty},
		{"ReferralLeaders", testReferralLeaders},
		{"WalletTotals", testWalletTotals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, s)
		})
	}
}

// TestMemoryStore runs the shared suite against the in-memory implementation
func TestMemoryStore(t *testing.T) {
	RunStoreTests(t,
		func(t *testing.T) Store { return NewMemoryStore() },
		func(t *testing.T) {},
	)
}

func testBindReferralFirstWriterWins(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := testAddr('a')
	first := testAddr('b')
	second := testAddr('c')

	locked, err := s.BindReferral(ctx, wallet, first)
	require.NoError(t, err)
	assert.True(t, locked)

	// A later bind with a different referrer still reports locked but must not
	// overwrite the first one.
	locked, err = s.BindReferral(ctx, wallet, second)
	require.NoError(t, err)
	assert.True(t, locked)

	ref, err := s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, first, *ref)
}

func testBindReferralRepeatSameRef(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := testAddr('a')
	ref := testAddr('b')

	locked, err := s.BindReferral(ctx, wallet, ref)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = s.BindReferral(ctx, wallet, ref)
	require.NoError(t, err)
	assert.True(t, locked)

	got, err := s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ref, *got)
}

func testGetReferrerIdempotentCreate(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := testAddr('d')

	// First lookup creates the row as a side effect; the second must be a no-op
	// returning the same result.
	ref, err := s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	assert.Nil(t, ref)

	ref, err = s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func testGetReferrerAfterBind(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := testAddr('a')
	ref := testAddr('b')

	// Looking up first (buyer before clicking a referral link) must not block a
	// later bind.
	got, err := s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	assert.Nil(t, got)

	locked, err := s.BindReferral(ctx, wallet, ref)
	require.NoError(t, err)
	assert.True(t, locked)

	got, err = s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ref, *got)
}

func testRecentPurchasesOrdering(t *testing.T, s Store) {
	ctx := context.Background()
	buyer := testAddr('a')

	inputs := []CreatePurchaseInput{
		{TS: 1000, Address: strPtr(buyer), USD: 10, Tokens: 100},
		{TS: 3000, Address: strPtr(buyer), USD: 30, Tokens: 300},
		{TS: 2000, Address: nil, USD: 20, Tokens: 200},
		{TS: 3000, Address: strPtr(buyer), USD: 35, Tokens: 350},
	}
	for _, in := range inputs {
		require.NoError(t, s.CreatePurchase(ctx, in))
	}

	purchases, err := s.RecentPurchases(ctx, 10)
	require.NoError(t, err)
	require.Len(t, purchases, 4)

	// Newest first; equal timestamps tie-break by id descending.
	assert.Equal(t, int64(3000), purchases[0].TS)
	assert.Equal(t, int64(3000), purchases[1].TS)
	assert.Greater(t, purchases[0].ID, purchases[1].ID)
	assert.Equal(t, int64(2000), purchases[2].TS)
	assert.Equal(t, int64(1000), purchases[3].TS)

	limited, err := s.RecentPurchases(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func testPurchaseTotals(t *testing.T, s Store) {
	ctx := context.Background()
	buyerA := testAddr('a')
	buyerB := testAddr('b')

	inputs := []CreatePurchaseInput{
		{TS: 1, Address: strPtr(buyerA), USD: 50, Tokens: 4000},
		{TS: 2, Address: strPtr(buyerA), USD: 25, Tokens: 2000},
		{TS: 3, Address: strPtr(buyerB), USD: 100, Tokens: 8000},
		{TS: 4, Address: nil, USD: 5, Tokens: 400},
	}
	for _, in := range inputs {
		require.NoError(t, s.CreatePurchase(ctx, in))
	}

	totals, err := s.GetPurchaseTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(180), totals.TotalUSD)
	assert.Equal(t, float64(14400), totals.TotalTokens)
	// Anonymous rows do not count as buyers.
	assert.Equal(t, int64(2), totals.Buyers)
}

func testPurchaseTotalsEmpty(t *testing.T, s Store) {
	totals, err := s.GetPurchaseTotals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, totals.TotalUSD)
	assert.Zero(t, totals.TotalTokens)
	assert.Zero(t, totals.Buyers)
}

func testReferralLeaders(t *testing.T, s Store) {
	ctx := context.Background()
	refA := testAddr('a')
	refB := testAddr('b')

	inputs := []CreatePurchaseInput{
		{TS: 1, USD: 10, Tokens: 100, Ref: strPtr(refA)},
		{TS: 2, USD: 40, Tokens: 400, Ref: strPtr(refB)},
		{TS: 3, USD: 15, Tokens: 150, Ref: strPtr(refA)},
		{TS: 4, USD: 99, Tokens: 990, Ref: nil},
		{TS: 5, USD: 77, Tokens: 770, Ref: strPtr(domain.RefSentinel)},
	}
	for _, in := range inputs {
		require.NoError(t, s.CreatePurchase(ctx, in))
	}

	leaders, err := s.ReferralLeaders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leaders, 2)

	assert.Equal(t, refB, leaders[0].Address)
	assert.Equal(t, float64(40), leaders[0].USD)
	assert.Equal(t, refA, leaders[1].Address)
	assert.Equal(t, float64(25), leaders[1].USD)

	limited, err := s.ReferralLeaders(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func testWalletTotals(t *testing.T, s Store) {
	ctx := context.Background()
	wallet := testAddr('a')
	other := testAddr('b')

	inputs := []CreatePurchaseInput{
		{TS: 1, Address: strPtr(wallet), USD: 50, Tokens: 4000},
		{TS: 2, Address: strPtr(other), USD: 10, Tokens: 800, Ref: strPtr(wallet)},
		{TS: 3, Address: strPtr(other), USD: 20, Tokens: 1600, Ref: strPtr(wallet)},
		{TS: 4, Address: strPtr(other), USD: 30, Tokens: 2400},
	}
	for _, in := range inputs {
		require.NoError(t, s.CreatePurchase(ctx, in))
	}

	totals, err := s.GetWalletTotals(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, float64(4000), totals.BoughtTokens)
	assert.Equal(t, float64(2400), totals.ReferredTokens)

	empty, err := s.GetWalletTotals(ctx, testAddr('z'))
	require.NoError(t, err)
	assert.Zero(t, empty.BoughtTokens)
	assert.Zero(t, empty.ReferredTokens)
}

// TestMemoryStoreConcurrentBind exercises the bind race on the in-memory
// implementation: many goroutines propose different referrers, exactly one
// must win and all callers must observe locked.
func TestMemoryStoreConcurrentBind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	wallet := testAddr('w')

	refs := []string{testAddr('a'), testAddr('b'), testAddr('c'), testAddr('d')}

	var wg sync.WaitGroup
	results := make([]bool, len(refs))
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			locked, err := s.BindReferral(ctx, wallet, ref)
			assert.NoError(t, err)
			results[i] = locked
		}(i, ref)
	}
	wg.Wait()

	for _, locked := range results {
		assert.True(t, locked)
	}

	got, err := s.GetReferrer(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Contains(t, refs, *got)
}
