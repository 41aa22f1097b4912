package rest

import (
	"encoding/json"

	"github.com/magtcoin/presale-backend/internal/store/schema"
)

// BindReferralRequest is the body of POST /api/referral
type BindReferralRequest struct {
	Wallet string `json:"wallet"`
	Ref    string `json:"ref"`
}

// PurchaseRequest is the body of POST /api/presale/purchase
type PurchaseRequest struct {
	USD     float64 `json:"usd"`
	Tokens  float64 `json:"tokens"`
	Address string  `json:"address"`
	Ref     string  `json:"ref"`
}

// RPCRequest is the body of POST /api/rpc. Params are forwarded opaquely.
type RPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// PurchaseItem is one feed entry
type PurchaseItem struct {
	ID      int64   `json:"id"`
	TS      int64   `json:"ts"`
	Address *string `json:"address"`
	USD     float64 `json:"usd"`
	Tokens  float64 `json:"tokens"`
	Ref     *string `json:"ref"`
}

// LeaderItem is one leaderboard entry
type LeaderItem struct {
	Address string  `json:"address"`
	USD     float64 `json:"usd"`
}

// StatsResponse is the public presale snapshot. The short field names are
// aliases kept for older frontend builds that still read them.
type StatsResponse struct {
	OK           bool    `json:"ok"`
	SoldMag      float64 `json:"soldMag"`
	TotalMag     float64 `json:"totalMag"`
	RaisedUSD    float64 `json:"raisedUsd"`
	Buyers       int64   `json:"buyers"`
	Sold         float64 `json:"sold"`
	Total        float64 `json:"total"`
	Raised       float64 `json:"raised"`
	ReferralPool float64 `json:"referralPool"`
}

// MapPurchaseToItem converts a schema row into its feed representation
func MapPurchaseToItem(p schema.Purchase) PurchaseItem {
	return PurchaseItem{
		ID:      p.ID,
		TS:      p.TS,
		Address: p.Address,
		USD:     p.USD,
		Tokens:  p.Tokens,
		Ref:     p.Ref,
	}
}
