package mfa

import (
	"context"
	"time"
)

// PushApproval waits for the user to accept a push notification on their
// device. There is no code to submit; approval is observed via Check.
type PushApproval struct {
	// Check reports whether the pending push challenge has been approved.
	Check func(ctx context.Context) (bool, error)

	Interval time.Duration
	Timeout  time.Duration
}

func NewPushApproval(check func(ctx context.Context) (bool, error), timeout time.Duration) *PushApproval {
	return &PushApproval{Check: check, Interval: time.Second, Timeout: timeout}
}

func (p *PushApproval) Name() string { return "push" }

func (p *PushApproval) Attempt(ctx context.Context) (string, error) {
	if p.Check == nil {
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
			ok, err := p.Check(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return "", ErrTimedOut
				}
				return "", err
			}
			if ok {
				return "", nil
			}
		}
	}
}
