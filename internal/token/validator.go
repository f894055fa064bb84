// Package token decides whether a captured bearer token can still be used.
// The token is an opaque JWT issued by the identity provider; we cannot check
// its signature (we never hold the signing key), but we can and must check the
// expiry claim before reusing it.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed = errors.New("token: not a decodable JWT")
	ErrNoExpiry  = errors.New("token: no expiry claim")
)

// Validator checks token expiry with a safety margin so a token never expires
// mid-call. Tokens without a readable expiry claim are always invalid.
type Validator struct {
	margin time.Duration
	now    func() time.Time
}

func NewValidator(margin time.Duration) *Validator {
	return &Validator{margin: margin, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ExpiresAt decodes the expiry claim without verifying the signature.
func (v *Validator) ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, ErrMalformed
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Valid reports whether the token can be used right now: the expiry claim must
// decode and lie beyond now plus the safety margin.
func (v *Validator) Valid(raw string) bool {
	if raw == "" {
		return false
	}
	exp, err := v.ExpiresAt(raw)
	if err != nil {
		return false
	}
	return v.now().Add(v.margin).Before(exp)
}
