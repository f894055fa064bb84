package mfa

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// ErrNoCode is returned by a Mailbox when no verification mail has arrived yet.
var ErrNoCode = errors.New("mfa: no verification code in mailbox")

// Mailbox retrieves the most recent verification code, however it is stored.
// The production implementation polls an IMAP inbox; tests supply fakes.
type Mailbox interface {
	FetchCode(ctx context.Context) (string, error)
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// ExtractCode pulls the 6-digit verification code out of a mail body.
func ExtractCode(body string) (string, bool) {
	m := codePattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmailCode polls the mailbox until a code shows up or the timeout elapses.
// The identity provider needs a few seconds to deliver the mail, so the first
// poll is already delayed by one interval.
type EmailCode struct {
	Mailbox  Mailbox
	Interval time.Duration
	Timeout  time.Duration
}

func NewEmailCode(mb Mailbox, interval, timeout time.Duration) *EmailCode {
	return &EmailCode{Mailbox: mb, Interval: interval, Timeout: timeout}
}

func (p *EmailCode) Name() string { return "email" }

func (p *EmailCode) Attempt(ctx context.Context) (string, error) {
	if p.Mailbox == nil {
		return "", ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ErrTimedOut
		case <-ticker.C:
			code, err := p.Mailbox.FetchCode(ctx)
			if errors.Is(err, ErrNoCode) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return "", ErrTimedOut
				}
				return "", err
			}
			return code, nil
		}
	}
}
