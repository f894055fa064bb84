package auth

import "context"

// Challenge is an MFA prompt the identity provider is waiting on.
type Challenge struct {
	// Method names the factor the provider expects, for example "totp",
	// "email" or "push".
	Method string
}

// LoginDriver walks the identity provider's login flow step by step. The
// production driver automates a headless browser; tests script the exchange.
type LoginDriver interface {
	// StartLogin opens the flow. Must be called before anything else.
	StartLogin(ctx context.Context) error

	SubmitIdentity(ctx context.Context, username string) error
	SubmitPassword(ctx context.Context, password string) error

	// MFAChallenge returns the pending challenge, or false when the
	// provider is done asking.
	MFAChallenge(ctx context.Context) (Challenge, bool, error)

	// SubmitCode answers the pending challenge.
	SubmitCode(ctx context.Context, code string) error

	// Authenticated reports whether the flow has completed.
	Authenticated(ctx context.Context) (bool, error)

	// BearerToken extracts the API token once authenticated.
	BearerToken(ctx context.Context) (string, error)
}
