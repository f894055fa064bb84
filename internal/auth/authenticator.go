package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/elia-parkbot/internal/mfa"
)

// Credentials is the username/password pair fed into the login flow.
type Credentials struct {
	Username string
	Password string
}

// SessionAuthenticator drives an interactive login, answering MFA challenges
// with the configured providers in priority order.
type SessionAuthenticator struct {
	driver    LoginDriver
	creds     Credentials
	providers []mfa.Provider
	log       *slog.Logger

	now func() time.Time
}

func NewSessionAuthenticator(driver LoginDriver, creds Credentials, providers []mfa.Provider, log *slog.Logger) *SessionAuthenticator {
	if log == nil {
		log = slog.Default()
	}
	return &SessionAuthenticator{
		driver:    driver,
		creds:     creds,
		providers: providers,
		log:       log,
		now:       time.Now,
	}
}

// Login runs the full flow and returns a fresh session. MFA providers are
// tried in order; exhausting them all is terminal.
func (a *SessionAuthenticator) Login(ctx context.Context) (Session, error) {
	if err := a.driver.StartLogin(ctx); err != nil {
		return Session{}, fmt.Errorf("start login: %w", err)
	}
	if err := a.driver.SubmitIdentity(ctx, a.creds.Username); err != nil {
		return Session{}, &AuthError{Reason: ReasonBadCredentials, Err: err}
	}
	if err := a.driver.SubmitPassword(ctx, a.creds.Password); err != nil {
		return Session{}, &AuthError{Reason: ReasonBadCredentials, Err: err}
	}

	if err := a.handleMFA(ctx); err != nil {
		return Session{}, err
	}

	ok, err := a.driver.Authenticated(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("check authenticated: %w", err)
	}
	if !ok {
		return Session{}, &AuthError{Reason: ReasonMFAExhausted}
	}

	token, err := a.driver.BearerToken(ctx)
	if err != nil || token == "" {
		return Session{}, &AuthError{Reason: ReasonNoToken, Err: err}
	}
	return Session{
		Token:      token,
		ObtainedAt: a.now(),
		Source:     SourceInteractive,
	}, nil
}

// handleMFA answers challenges until the provider stops asking. Each factor
// gets one attempt per challenge; a failed factor falls through to the next.
func (a *SessionAuthenticator) handleMFA(ctx context.Context) error {
	for {
		challenge, pending, err := a.driver.MFAChallenge(ctx)
		if err != nil {
			return fmt.Errorf("read mfa challenge: %w", err)
		}
		if !pending {
			return nil
		}

		satisfied := false
		var lastErr error
		for _, p := range a.providers {
			log := a.log.With("factor", p.Name(), "challenge", challenge.Method)

			code, attemptErr := p.Attempt(ctx)
			if attemptErr != nil {
				if errors.Is(attemptErr, mfa.ErrUnavailable) {
					log.Debug("factor unavailable")
				} else {
					log.Warn("factor attempt failed", "error", attemptErr)
				}
				lastErr = attemptErr
				continue
			}

			if code == "" {
				// Factor resolved out of band, nothing to submit.
				satisfied = true
				break
			}
			if submitErr := a.driver.SubmitCode(ctx, code); submitErr != nil {
				log.Warn("code rejected", "error", submitErr)
				lastErr = submitErr
				continue
			}
			satisfied = true
			break
		}
		if !satisfied {
			return &AuthError{Reason: ReasonMFAExhausted, Err: lastErr}
		}
	}
}
