package domain

import "errors"

var (
	// ErrInvalidAddress is returned when an address does not match the TON friendly-address grammar
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when a purchase amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountOutOfRange is returned when a purchase amount falls outside the configured USD bounds
	ErrAmountOutOfRange = errors.New("amount out of range")

	// ErrMethodNotAllowed is returned when an RPC method is not in the upstream allow-list
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrUpstreamTimeout is returned when the upstream RPC call exceeds its deadline
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamFailure is returned when the upstream RPC call fails for any other reason
	ErrUpstreamFailure = errors.New("upstream failure")
)
