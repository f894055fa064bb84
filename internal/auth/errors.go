package auth

import "fmt"

// Reason says why authentication could not produce a usable session.
type Reason string

const (
	// ReasonMFAExhausted means every configured factor was tried and none
	// satisfied the provider.
	ReasonMFAExhausted Reason = "mfa_exhausted"
	// ReasonBadCredentials means the username or password was rejected.
	ReasonBadCredentials Reason = "bad_credentials"
	// ReasonNoToken means login completed but no bearer token could be
	// extracted.
	ReasonNoToken Reason = "no_token"
	// ReasonInteractiveUnavailable means every non-interactive path failed
	// and no login driver is wired in.
	ReasonInteractiveUnavailable Reason = "interactive_unavailable"
)

// AuthError is a terminal authentication failure.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }
