package service

import "errors"

// Caller-facing sentinel errors. Handlers map these onto response codes; none
// of them is retried automatically.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownCertification = errors.New("unknown certification")
	ErrSessionNotFound      = errors.New("session not found")
	ErrResultNotFound       = errors.New("result not found")
	ErrDuplicateSession     = errors.New("session already exists")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrAlreadySubmitted     = errors.New("already submitted")
	// ErrSessionExpired is distinct from ErrSessionNotActive: the expiry path
	// commits the EXPIRED transition and still fails the triggering call.
	ErrSessionExpired = errors.New("session has expired")
	// ErrNoScoringConfig signals a deployment/data error, not user input.
	ErrNoScoringConfig = errors.New("no scoring configuration for certification")
)
