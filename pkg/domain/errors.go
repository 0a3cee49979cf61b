package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// Settlement pipeline errors
var (
	// ErrInvalidAmount is returned when a deposit amount is not positive or falls outside the configured band.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAuthentication is returned when a payment callback carries a bad or missing signature.
	ErrAuthentication = errors.New("callback authentication failed")
	// ErrAmountMismatch is returned when the callback amount differs from the recorded ledger amount.
	ErrAmountMismatch = errors.New("callback amount does not match ledger amount")
	// ErrAlreadySettled is returned when an entry has already reached a terminal status.
	ErrAlreadySettled = errors.New("entry already settled")
	// ErrProviderUnavailable is returned when the payment provider cannot produce a payable reference.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrPaymentNotConfigured is returned when neither the provider nor the bank-transfer fallback is configured.
	ErrPaymentNotConfigured = errors.New("payment not configured")
	// ErrPersistenceConflict is returned when a conditional update matched no row.
	ErrPersistenceConflict = errors.New("conditional update lost the race")
)
