package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.BaseURL, "zhipin.com")
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.DelayMin())
	assert.Equal(t, 3*time.Second, cfg.DelayMax())
	assert.Equal(t, 750*time.Millisecond, cfg.PopupInterval())
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: "https://board.test/jobs?"
headless: false
timeout_seconds: 5
retry_attempts: 4
delay_min_ms: 200
delay_max_ms: 500
nav_per_minute: 30
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://board.test/jobs?", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 4, cfg.RetryAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.DelayMin())
	assert.Equal(t, float64(30), cfg.NavPerMinute)
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delay_min_ms: 500\ndelay_max_ms: 100\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsTelegramTokenWithoutChat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`telegram_token: "123:abc"`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesTelegram(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:token")
	t.Setenv("TELEGRAM_CHAT_ID", "4242")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "999:token", cfg.TelegramToken)
	assert.Equal(t, int64(4242), cfg.TelegramChatID)
}

func TestEnvRejectsBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:token")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
