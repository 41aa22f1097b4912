// Package rpc proxies a whitelisted subset of the upstream TON JSON-RPC API.
// The gateway's only job is hiding the server-side credential and restricting
// which remote procedures are reachable; it never interprets the payload.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/magtcoin/presale-backend/internal/domain"
)

// DefaultTimeout bounds every upstream call
const DefaultTimeout = 12 * time.Second

// allowedMethods is the fixed allow-list of upstream RPC method names. The
// whitelist, not payload inspection, is the security boundary.
var allowedMethods = map[string]struct{}{
	"getAddressInformation": {},
	"getWalletInformation":  {},
	"getAddressBalance":     {},
	"getTransactions":       {},
	"runGetMethod":          {},
	"sendBoc":               {},
	"sendBocReturnHash":     {},
	"estimateFee":           {},
	"getMasterchainInfo":    {},
}

// Gateway forwards JSON-RPC 2.0 requests to the configured upstream endpoint
type Gateway struct {
	endpoint  string
	apiKey    string
	timeout   time.Duration
	client    *http.Client
	requestID atomic.Uint64
}

// Option configures a Gateway
type Option func(*Gateway)

// WithTimeout overrides the upstream call timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// NewGateway creates a gateway for the given upstream endpoint. The apiKey is
// attached server-side and never exposed to callers.
func NewGateway(endpoint, apiKey string, opts ...Option) *Gateway {
	g := &Gateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  DefaultTimeout,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MethodAllowed reports whether method is in the upstream allow-list
func MethodAllowed(method string) bool {
	_, ok := allowedMethods[method]
	return ok
}

// envelope is the JSON-RPC 2.0 request we forward upstream
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Result carries the upstream status code and raw body, passed through
// unmodified.
type Result struct {
	StatusCode int
	Body       []byte
}

// Proxy forwards one whitelisted call to the upstream endpoint and returns
// the upstream response verbatim. The call is bounded by the gateway timeout;
// on expiry the in-flight request is cancelled and ErrUpstreamTimeout is
// returned, distinct from ErrUpstreamFailure for other transport errors.
func (g *Gateway) Proxy(ctx context.Context, method string, params json.RawMessage) (*Result, error) {
	if !MethodAllowed(method) {
		return nil, domain.ErrMethodNotAllowed
	}

	body, err := json.Marshal(envelope{
		JSONRPC: "2.0",
		ID:      g.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}
