package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/elia-parkbot/internal/token"
)

// Identity is the account a token resolves to.
type Identity struct {
	UserID string
	Email  string
}

// Verifier checks a token against the backend and resolves its identity.
type Verifier interface {
	Verify(ctx context.Context, tok string) (Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, tok string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, tok string) (Identity, error) {
	return f(ctx, tok)
}

// Authenticator produces a fresh session interactively.
type Authenticator interface {
	Login(ctx context.Context) (Session, error)
}

// Orchestrator hands out a valid session, trying the cheap paths first:
// the session already in memory, then a token from the environment, then
// the on-disk cache, and only then an interactive login. In cloud runs the
// cache is skipped both ways; those environments are ephemeral and the
// cache would leak a token into them.
type Orchestrator struct {
	validator     *token.Validator
	verifier      Verifier
	cache         *Cache
	authenticator Authenticator
	envToken      string
	cloud         bool
	log           *slog.Logger

	session *Session
	now     func() time.Time
}

type OrchestratorOptions struct {
	Validator     *token.Validator
	Verifier      Verifier
	Cache         *Cache
	Authenticator Authenticator
	EnvToken      string
	Cloud         bool
	Log           *slog.Logger
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		validator:     opts.Validator,
		verifier:      opts.Verifier,
		cache:         opts.Cache,
		authenticator: opts.Authenticator,
		envToken:      opts.EnvToken,
		cloud:         opts.Cloud,
		log:           log,
		now:           time.Now,
	}
}

// EnsureAuthenticated returns a session whose token is valid past the safety
// margin, authenticating only as far down the chain as necessary.
func (o *Orchestrator) EnsureAuthenticated(ctx context.Context) (Session, error) {
	if o.session != nil && o.validator.Valid(o.session.Token) {
		return *o.session, nil
	}
	o.session = nil

	if s, ok := o.tryEnvToken(ctx); ok {
		o.session = &s
		return s, nil
	}
	if s, ok := o.tryCache(ctx); ok {
		o.session = &s
		return s, nil
	}

	if o.authenticator == nil {
		return Session{}, &AuthError{Reason: ReasonInteractiveUnavailable}
	}
	s, err := o.authenticator.Login(ctx)
	if err != nil {
		return Session{}, err
	}
	if id, verr := o.verifier.Verify(ctx, s.Token); verr == nil {
		s.UserID = id.UserID
		s.Email = id.Email
	}
	o.session = &s

	if !o.cloud && o.cache != nil {
		if cerr := o.cache.Save(s); cerr != nil {
			o.log.Warn("could not persist session", "error", cerr)
		}
	}
	return s, nil
}

func (o *Orchestrator) tryEnvToken(ctx context.Context) (Session, bool) {
	if o.envToken == "" || !o.validator.Valid(o.envToken) {
		return Session{}, false
	}
	id, err := o.verifier.Verify(ctx, o.envToken)
	if err != nil {
		o.log.Warn("environment token rejected by backend", "error", err)
		return Session{}, false
	}
	o.log.Info("using token from environment", "user", id.Email)
	return Session{
		Token:      o.envToken,
		UserID:     id.UserID,
		Email:      id.Email,
		ObtainedAt: o.now(),
		Source:     SourceEnvironment,
	}, true
}

func (o *Orchestrator) tryCache(ctx context.Context) (Session, bool) {
	if o.cloud || o.cache == nil {
		return Session{}, false
	}
	s, err := o.cache.Load()
	if err != nil {
		return Session{}, false
	}
	if !o.validator.Valid(s.Token) {
		o.log.Debug("cached session expired")
		return Session{}, false
	}
	id, err := o.verifier.Verify(ctx, s.Token)
	if err != nil {
		o.log.Warn("cached token rejected by backend", "error", err)
		return Session{}, false
	}
	s.UserID = id.UserID
	s.Email = id.Email
	s.Source = SourceCache
	o.log.Info("resumed cached session", "user", id.Email)
	return s, true
}

// Invalidate discards the in-memory and cached session, forcing the next
// EnsureAuthenticated to start over.
func (o *Orchestrator) Invalidate() {
	o.session = nil
	if o.cache != nil && !o.cloud {
		_ = o.cache.Clear()
	}
}
