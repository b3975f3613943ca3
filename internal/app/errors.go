package app

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidInput marks a Calculation that failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
