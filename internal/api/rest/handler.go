package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/magtcoin/presale-backend/internal/presale"
	"github.com/magtcoin/presale-backend/internal/rpc"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// BindReferral locks a wallet's referrer (first writer wins)
	// POST /api/referral
	BindReferral(c *gin.Context)

	// GetReferral returns the wallet's locked referrer, if any
	// GET /api/referral?wallet=<address>
	GetReferral(c *gin.Context)

	// RecordPurchase appends a client-reported purchase to the ledger
	// POST /api/presale/purchase
	RecordPurchase(c *gin.Context)

	// GetStats returns the public presale snapshot
	// GET /api/presale/stats
	GetStats(c *gin.Context)

	// GetFeed returns recent purchases, newest first
	// GET /api/presale/feed?limit=<n>
	GetFeed(c *gin.Context)

	// GetLeaders returns the referral leaderboard
	// GET /api/presale/leaders?limit=<n>
	GetLeaders(c *gin.Context)

	// GetMyStats returns per-wallet derived totals
	// GET /api/my-stats?wallet=<address>
	GetMyStats(c *gin.Context)

	// ProxyRPC forwards a whitelisted JSON-RPC call upstream
	// POST /api/rpc
	ProxyRPC(c *gin.Context)

	// HealthCheck returns the liveness status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	service *presale.Service
	gateway *rpc.Gateway
}

// NewHandler creates a new REST API handler
func NewHandler(service *presale.Service, gateway *rpc.Gateway) Handler {
	return &handler{service: service, gateway: gateway}
}

// BindReferral locks a wallet's referrer
func (h *handler) BindReferral(c *gin.Context) {
	var req BindReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, errCodeBadRequest)
		return
	}

	result, err := h.service.BindReferral(c.Request.Context(), req.Wallet, req.Ref)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "locked": result.Locked})
}

// GetReferral returns the wallet's locked referrer
func (h *handler) GetReferral(c *gin.Context) {
	wallet := c.Query("wallet")

	referrer, err := h.service.LookupReferrer(c.Request.Context(), wallet)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if referrer == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "referrer": *referrer, "locked": true})
}

// RecordPurchase appends a purchase report to the ledger
func (h *handler) RecordPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, errCodeBadRequest)
		return
	}

	err := h.service.RecordPurchase(c.Request.Context(), presale.PurchaseInput{
		USD:     req.USD,
		Tokens:  req.Tokens,
		Address: req.Address,
		RefHint: req.Ref,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetStats returns the public presale snapshot
func (h *handler) GetStats(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		OK:           true,
		SoldMag:      snap.SoldTokens,
		TotalMag:     snap.TotalSupply,
		RaisedUSD:    snap.RaisedUSD,
		Buyers:       snap.Buyers,
		Sold:         snap.SoldTokens,
		Total:        snap.TotalSupply,
		Raised:       snap.RaisedUSD,
		ReferralPool: snap.ReferralPool,
	})
}

// GetFeed returns recent purchases, newest first
func (h *handler) GetFeed(c *gin.Context) {
	purchases, err := h.service.Feed(c.Request.Context(), parseLimit(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]PurchaseItem, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, MapPurchaseToItem(p))
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items, "count": len(items)})
}

// GetLeaders returns the referral leaderboard
func (h *handler) GetLeaders(c *gin.Context) {
	leaders, err := h.service.Leaders(c.Request.Context(), parseLimit(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]LeaderItem, 0, len(leaders))
	for _, l := range leaders {
		items = append(items, LeaderItem{Address: l.Address, USD: l.USD})
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items, "count": len(items)})
}

// GetMyStats returns per-wallet derived totals, floor-rounded
func (h *handler) GetMyStats(c *gin.Context) {
	wallet := c.Query("wallet")

	stats, err := h.service.WalletStats(c.Request.Context(), wallet)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"bought_magt":    stats.BoughtTokens,
		"referrals_magt": stats.ReferralTokens,
	})
}

// ProxyRPC forwards one whitelisted JSON-RPC call and mirrors the upstream
// response verbatim, status included.
func (h *handler) ProxyRPC(c *gin.Context) {
	var req RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, errCodeBadRequest)
		return
	}

	result, err := h.gateway.Proxy(c.Request.Context(), req.Method, req.Params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Data(result.StatusCode, "application/json", result.Body)
}

// HealthCheck returns the liveness status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// parseLimit reads the optional limit query parameter; zero means "use the
// route's default" and is clamped downstream.
func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
