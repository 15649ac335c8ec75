package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoMarketData    = errors.New("no market data")
	ErrPositionExists  = errors.New("position already open")
	ErrPositionLimit   = errors.New("position limit reached")
	ErrBudgetExhausted = errors.New("operation budget exhausted")
	ErrCycleInFlight   = errors.New("cycle already in flight")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrVenueRejected   = errors.New("venue rejected submission")
	ErrContextDone     = errors.New("context cancelled")
	ErrLockHeld        = errors.New("lock already held")
)
