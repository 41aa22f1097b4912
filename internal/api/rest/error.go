package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/magtcoin/presale-backend/internal/domain"
	"github.com/magtcoin/presale-backend/internal/logger"
)

// ErrorCode represents a stable machine-readable error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeInvalidAddress   ErrorCode = "invalid_address"
	errCodeInvalidAmount    ErrorCode = "invalid_amount"
	errCodeAmountOutOfRange ErrorCode = "amount_out_of_range"
	errCodeMethodNotAllowed ErrorCode = "method_not_allowed"
	errCodeNotFound         ErrorCode = "not_found"

	// Upstream and server errors
	errCodeUpstreamTimeout ErrorCode = "upstream_timeout"
	errCodeUpstreamError   ErrorCode = "upstream_error"
	errCodeDBError         ErrorCode = "db_error"
)

// errorResponse is the shared error shape: {ok:false, err:<code>}.
// No internal details ever reach the client.
type errorResponse struct {
	OK  bool      `json:"ok"`
	Err ErrorCode `json:"err"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode) {
	c.JSON(statusCode, errorResponse{OK: false, Err: code})
}

// respondBadRequest sends a 400 with the given code
func respondBadRequest(c *gin.Context, code ErrorCode) {
	respondWithError(c, http.StatusBadRequest, code)
}

// respondDomainError maps a service error onto its HTTP status and code, and
// logs server-side failures with route context.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		respondBadRequest(c, errCodeInvalidAddress)
	case errors.Is(err, domain.ErrInvalidAmount):
		respondBadRequest(c, errCodeInvalidAmount)
	case errors.Is(err, domain.ErrAmountOutOfRange):
		respondBadRequest(c, errCodeAmountOutOfRange)
	case errors.Is(err, domain.ErrMethodNotAllowed):
		respondBadRequest(c, errCodeMethodNotAllowed)
	case errors.Is(err, domain.ErrUpstreamTimeout):
		respondWithError(c, http.StatusGatewayTimeout, errCodeUpstreamTimeout)
	case errors.Is(err, domain.ErrUpstreamFailure):
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		respondWithError(c, http.StatusInternalServerError, errCodeUpstreamError)
	default:
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		respondWithError(c, http.StatusInternalServerError, errCodeDBError)
	}
}
