package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the account or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	ErrAccountLocked = errors.New("account locked")
	// ErrDuplicateOrigin enforces the one-account-per-origin policy.
	ErrDuplicateOrigin = errors.New("an account already exists for this origin")
	// ErrRecoveryTooSoon protects freshly created accounts from recovery abuse.
	ErrRecoveryTooSoon = errors.New("account too recent for recovery")
	// ErrAlreadyProcessed marks a purchase request that already reached a terminal status.
	// Re-processing is a no-op so approvals can be replayed safely across channels.
	ErrAlreadyProcessed     = errors.New("purchase request already processed")
	ErrInvalidChannelHandle = errors.New("invalid channel handle")
	ErrInvalidPackSize      = errors.New("invalid pack size")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("conflict")
	// ErrIDAllocationExhausted is returned when bounded retries could not mint a fresh account ID.
	ErrIDAllocationExhausted = errors.New("account id allocation exhausted")
	// ErrStorageUnavailable surfaces a persisted write that failed even after one retry.
	// Callers treat it as retriable; it never carries raw storage detail to end users.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrDownloadFailed wraps opaque download-engine failures after the credit rollback ran.
	ErrDownloadFailed = errors.New("download failed")
)
