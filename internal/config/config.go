package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PARKBOT_"

type Config struct {
	Log Log `koanf:"log"`

	Elia struct {
		Endpoint     string `koanf:"endpoint" validate:"required,url"`
		Organization string `koanf:"organization"`
		FloorID      string `koanf:"floorId" validate:"required"`
	} `koanf:"elia"`

	Auth Auth `koanf:"auth"`

	Retry struct {
		MaxAttempts int           `koanf:"maxAttempts" validate:"min=1,max=10"`
		BaseDelay   time.Duration `koanf:"baseDelay"`
		MaxDelay    time.Duration `koanf:"maxDelay"`
	} `koanf:"retry"`

	Booking Booking `koanf:"booking"`

	Schedule struct {
		Executive string `koanf:"executive"`
		Regular   string `koanf:"regular"`
	} `koanf:"schedule"`

	Notify struct {
		DiscordWebhook string `koanf:"discordWebhook"`
		Telegram       struct {
			BotToken string `koanf:"botToken"`
			ChatID   string `koanf:"chatId"`
		} `koanf:"telegram"`
	} `koanf:"notify"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

type Auth struct {
	MFAMethods        []string      `koanf:"mfaMethods" validate:"dive,oneof=totp email push"`
	TOTPTimeout       time.Duration `koanf:"totpTimeout"`
	EmailTimeout      time.Duration `koanf:"emailTimeout"`
	EmailPollInterval time.Duration `koanf:"emailPollInterval"`
	PushTimeout       time.Duration `koanf:"pushTimeout"`
	TokenSafetyMargin time.Duration `koanf:"tokenSafetyMargin"`
	SessionCachePath  string        `koanf:"sessionCachePath"`
}

type Booking struct {
	ExecutiveLeadHours int      `koanf:"executiveLeadHours" validate:"min=1"`
	RegularOffsetsDays []int    `koanf:"regularOffsetsDays" validate:"min=1,dive,min=1,max=30"`
	WindowStart        string   `koanf:"windowStart"`
	WindowHours        int      `koanf:"windowHours" validate:"min=1,max=24"`
	Vacations          []string `koanf:"vacations" validate:"dive,datetime=2006-01-02"`
}

// Load reads the optional yaml file at path, then applies PARKBOT_* environment
// overrides (PARKBOT_BOOKING_WINDOWHOURS=6 maps to booking.windowhours).
// Missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config validate: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	var cfg Config
	cfg.Log = Log{Level: "info"}
	cfg.Elia.Endpoint = "https://api.elia.io/graphql"
	cfg.Elia.FloorID = "sp_Mkddt7JNKkLPhqTc"
	cfg.Auth = Auth{
		MFAMethods:        []string{"totp", "email", "push"},
		TOTPTimeout:       15 * time.Second,
		EmailTimeout:      90 * time.Second,
		EmailPollInterval: 5 * time.Second,
		PushTimeout:       60 * time.Second,
		TokenSafetyMargin: 5 * time.Minute,
		SessionCachePath:  defaultCachePath(),
	}
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = 5 * time.Second
	cfg.Retry.MaxDelay = 60 * time.Second
	cfg.Booking = Booking{
		ExecutiveLeadHours: 6,
		RegularOffsetsDays: []int{14, 15},
		WindowStart:        "08:00",
		WindowHours:        8,
	}
	// weekdays only: executive at midnight, regular at 06:00
	cfg.Schedule.Executive = "0 0 * * 1-5"
	cfg.Schedule.Regular = "0 6 * * 1-5"
	return cfg
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parkbot-session"
	}
	return home + "/.parkbot/session"
}

// VacationSet returns the configured vacation dates as a lookup set keyed by
// YYYY-MM-DD.
func (b Booking) VacationSet() map[string]bool {
	set := make(map[string]bool, len(b.Vacations))
	for _, d := range b.Vacations {
		set[d] = true
	}
	return set
}

// IsCloud reports whether we run in a headless cloud environment (GitHub
// Actions, generic CI, or the docker image). Cloud runs never touch the local
// session cache.
func IsCloud() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("ENVIRONMENT") == "docker"
}
