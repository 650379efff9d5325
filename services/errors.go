package services

import "errors"

// Sentinel errors for business-rule failures. Handlers map these onto HTTP
// statuses; they never cross the HTTP boundary as raw errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive integer")
	ErrInvalidTxType     = errors.New("unknown transaction type")
	ErrInvalidTier       = errors.New("invalid subscription tier")
	ErrUserNotFound      = errors.New("user not found")
)
