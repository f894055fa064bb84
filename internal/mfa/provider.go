// Package mfa implements the second-factor strategies used during interactive
// login: an authenticator code computed from the TOTP seed, a code fished out
// of the MFA email, and a manual push approval. The orchestrator tries them in
// a fixed priority order; a provider that errors or times out just hands over
// to the next one.
package mfa

import (
	"context"
	"errors"
)

var (
	// ErrTimedOut means the provider's own deadline elapsed before it could
	// produce a code or observe an approval.
	ErrTimedOut = errors.New("mfa: timed out")
	// ErrUnavailable means the provider is missing a prerequisite (no TOTP
	// seed, no mail credentials) and should be skipped.
	ErrUnavailable = errors.New("mfa: provider unavailable")
)

// Provider produces a one-time code, or blocks until an out-of-band approval.
// Attempt returns the code to submit; an empty code with a nil error means the
// factor was satisfied without a code (push approval).
type Provider interface {
	Name() string
	Attempt(ctx context.Context) (code string, err error)
}
