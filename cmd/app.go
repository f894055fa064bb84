package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/example/elia-parkbot/internal/auth"
	"github.com/example/elia-parkbot/internal/booking"
	"github.com/example/elia-parkbot/internal/config"
	"github.com/example/elia-parkbot/internal/elia"
	"github.com/example/elia-parkbot/internal/mfa"
	"github.com/example/elia-parkbot/internal/notify"
	"github.com/example/elia-parkbot/internal/retry"
	"github.com/example/elia-parkbot/internal/secrets"
	"github.com/example/elia-parkbot/internal/token"
	"github.com/example/elia-parkbot/internal/workflow"
)

// app wires configuration, secrets and the API client into the workflow.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	secrets  *secrets.Store
	client   *elia.Client
	sessions *auth.Orchestrator
	coord    *retry.Coordinator
	flow     *workflow.Workflow
	notifier notify.Notifier
}

// newLoginDriver builds the interactive login driver. The default build has
// none: headless and cloud runs authenticate with a captured token, and the
// browser-driven flow plugs in here.
var newLoginDriver func(cfg config.Config) auth.LoginDriver

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log)
	sec := secrets.FromEnv()

	client := elia.NewClient(cfg.Elia.Endpoint, sec.BearerToken())
	verifier := auth.VerifierFunc(func(ctx context.Context, tok string) (auth.Identity, error) {
		client.SetToken(tok)
		u, err := client.CurrentUser(ctx)
		if err != nil {
			return auth.Identity{}, err
		}
		return auth.Identity{UserID: u.ID, Email: u.Email}, nil
	})

	var cache *auth.Cache
	if key, kerr := sec.SessionKey(); kerr == nil {
		cache, err = auth.NewCache(key, cfg.Auth.SessionCachePath)
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("session cache disabled", "reason", kerr)
	}

	var authenticator auth.Authenticator
	if newLoginDriver != nil {
		driver := newLoginDriver(cfg)
		username, uerr := sec.Username()
		password, perr := sec.Password()
		if uerr != nil {
			return nil, uerr
		}
		if perr != nil {
			return nil, perr
		}
		authenticator = auth.NewSessionAuthenticator(
			driver,
			auth.Credentials{Username: username, Password: password},
			mfaProviders(cfg, sec, driver, log),
			log,
		)
	}

	sessions := auth.NewOrchestrator(auth.OrchestratorOptions{
		Validator:     token.NewValidator(cfg.Auth.TokenSafetyMargin),
		Verifier:      verifier,
		Cache:         cache,
		Authenticator: authenticator,
		EnvToken:      sec.BearerToken(),
		Cloud:         config.IsCloud(),
		Log:           log,
	})

	a := &app{
		cfg:      cfg,
		log:      log,
		secrets:  sec,
		client:   client,
		sessions: sessions,
		coord: retry.NewCoordinator(
			retry.DefaultPolicies(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay), log),
		notifier: buildNotifier(cfg),
	}
	execLead := time.Duration(cfg.Booking.ExecutiveLeadHours) * time.Hour
	a.flow = workflow.New(sessions, a.newExecutor, execLead, cfg.Booking.RegularOffsetsDays, log)
	return a, nil
}

// eliaBooker builds the directory adapter for an authenticated session.
func (a *app) eliaBooker(s auth.Session) *elia.Booker {
	a.client.SetToken(s.Token)
	return elia.NewBooker(a.client, a.cfg.Elia.FloorID, s.UserID, a.cfg.Booking.WindowStart, a.cfg.Booking.WindowHours)
}

func (a *app) newExecutor(s auth.Session) workflow.DateBooker {
	return booking.NewExecutor(a.eliaBooker(s), a.coord, a.cfg.Booking.VacationSet(), a.log)
}

// notify delivers the run report, riding out webhook hiccups. Delivery is
// best effort; a run never fails because its report could not be sent.
func (a *app) notify(ctx context.Context, report workflow.RunReport) {
	err := a.coord.Do(ctx, retry.CategoryNetwork, "notify", func(ctx context.Context) error {
		return a.notifier.Notify(ctx, report)
	})
	if err != nil {
		a.log.Warn("notification failed", "error", err)
	}
}

// mfaProviders assembles the factor chain in configured priority order.
// Factors whose secrets are absent are left out rather than failing later.
func mfaProviders(cfg config.Config, sec *secrets.Store, driver auth.LoginDriver, log *slog.Logger) []mfa.Provider {
	var providers []mfa.Provider
	for _, method := range cfg.Auth.MFAMethods {
		switch method {
		case "totp":
			if secret, err := sec.TOTPSecret(); err == nil {
				providers = append(providers, mfa.NewTOTP(secret, cfg.Auth.TOTPTimeout))
			}
		case "email":
			if !sec.EmailMFAAvailable() {
				continue
			}
			addr, _ := sec.EmailAddress()
			pass, _ := sec.IMAPPassword()
			mailbox := mfa.NewIMAPMailbox(sec.IMAPHost(), sec.IMAPPort(), addr, pass)
			providers = append(providers, mfa.NewEmailCode(mailbox, cfg.Auth.EmailPollInterval, cfg.Auth.EmailTimeout))
		case "push":
			providers = append(providers, mfa.NewPushApproval(driver.Authenticated, cfg.Auth.PushTimeout))
		default:
			log.Warn("unknown mfa method ignored", "method", method)
		}
	}
	return providers
}

func newLogger(c config.Log) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Pretty {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func buildNotifier(cfg config.Config) notify.Notifier {
	var channels []notify.Notifier
	if cfg.Notify.DiscordWebhook != "" {
		channels = append(channels, notify.NewDiscordNotifier(cfg.Notify.DiscordWebhook))
	}
	if cfg.Notify.Telegram.BotToken != "" && cfg.Notify.Telegram.ChatID != "" {
		channels = append(channels, notify.NewTelegramNotifier(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
	}
	if len(channels) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(channels...)
}
