package mfa

import (
	"context"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
)

// TOTP computes the current authenticator code from the shared seed. It is
// deterministic and instant; the timeout bounds the whole attempt so a stuck
// caller context cannot hold the factor chain up.
type TOTP struct {
	Secret  string // base32 seed
	Timeout time.Duration
	Now     func() time.Time
}

func NewTOTP(secret string, timeout time.Duration) *TOTP {
	return &TOTP{Secret: secret, Timeout: timeout, Now: time.Now}
}

func (p *TOTP) Name() string { return "totp" }

func (p *TOTP) Attempt(ctx context.Context) (string, error) {
	if p.Secret == "" {
		return "", ErrUnavailable
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code, err := totp.GenerateCode(p.Secret, p.Now())
	if err != nil {
		return "", fmt.Errorf("totp generate: %w", err)
	}
	return code, nil
}
