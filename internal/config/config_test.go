package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.elia.io/graphql", cfg.Elia.Endpoint)
	assert.Equal(t, "sp_Mkddt7JNKkLPhqTc", cfg.Elia.FloorID)
	assert.Equal(t, []string{"totp", "email", "push"}, cfg.Auth.MFAMethods)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenSafetyMargin)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, []int{14, 15}, cfg.Booking.RegularOffsetsDays)
	assert.Equal(t, "08:00", cfg.Booking.WindowStart)
	assert.Equal(t, 8, cfg.Booking.WindowHours)
	assert.Equal(t, "0 0 * * 1-5", cfg.Schedule.Executive)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parkbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
booking:
  windowHours: 6
  vacations:
    - 2026-12-24
    - 2026-12-28
notify:
  discordWebhook: https://discord.example/hook
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Booking.WindowHours)
	assert.Equal(t, "https://discord.example/hook", cfg.Notify.DiscordWebhook)
	assert.Equal(t, "08:00", cfg.Booking.WindowStart, "untouched keys keep defaults")

	set := cfg.Booking.VacationSet()
	assert.True(t, set["2026-12-24"])
	assert.False(t, set["2026-12-25"])
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PARKBOT_LOG_LEVEL", "debug")
	t.Setenv("PARKBOT_ELIA_FLOORID", "sp_other")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sp_other", cfg.Elia.FloorID)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PARKBOT_LOG_LEVEL", "loud")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
}

func TestIsCloud(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("CI", "")
	t.Setenv("ENVIRONMENT", "")
	assert.False(t, IsCloud())

	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, IsCloud())
}
