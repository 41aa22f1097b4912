package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all REST routes. generalLimit applies to every /api
// route; rpcLimit is the stricter budget for the RPC proxy, which costs an
// outbound network call per request.
func SetupRoutes(router *gin.Engine, handler Handler, generalLimit, rpcLimit gin.HandlerFunc) {
	// Health check endpoint (not rate limited)
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api", generalLimit)
	{
		// Referral binding and lookup
		api.POST("/referral", handler.BindReferral)
		api.GET("/referral", handler.GetReferral)

		// Presale ledger and statistics
		api.POST("/presale/purchase", handler.RecordPurchase)
		api.GET("/presale/stats", handler.GetStats)
		api.GET("/presale/feed", handler.GetFeed)
		api.GET("/presale/leaders", handler.GetLeaders)

		// Per-wallet derived totals
		api.GET("/my-stats", handler.GetMyStats)

		// Whitelisted upstream RPC proxy
		api.POST("/rpc", rpcLimit, handler.ProxyRPC)
	}

	// Any unmatched route gets the shared error shape
	router.NoRoute(func(c *gin.Context) {
		respondWithError(c, http.StatusNotFound, errCodeNotFound)
	})
}
