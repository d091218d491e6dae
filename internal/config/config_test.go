package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_DRIVER", "SQLITE_PATH", "DATABASE_URI", "LISTEN_ADDR",
		"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_ENDPOINT", "BOT_ENABLED",
		"NOTIFY_TIMEOUT", "BRIDGE_URL", "BRIDGE_PUSH_INTERVAL", "BRIDGE_RETRY_INTERVAL",
		"AI_API_KEY", "AI_BASE_URL", "AI_MODEL",
	} {
		t.Setenv(key, "")
	}
	// godotenv reads .env from the working directory.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "diditakeit.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.BridgePushDuration())
	assert.Equal(t, 15*time.Second, cfg.BridgeRetryDuration())
	assert.False(t, cfg.BotEnabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
store_driver = "memory"
listen_addr = ":9000"
notify_timeout = "10"
telegram_chat_id = "@family"
`), 0o644))
	t.Setenv("LISTEN_ADDR", ":9100")
	t.Setenv("BOT_ENABLED", "true")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, "@family", cfg.TelegramChatID)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeoutDuration())
	assert.True(t, cfg.BotEnabled)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("AI_MODEL=local/model\n"), 0o644))
	// An empty value set by t.Setenv counts as present for godotenv, so
	// drop the key entirely for this case.
	require.NoError(t, os.Unsetenv("AI_MODEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local/model", cfg.AIModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"postgres without uri", func(c *Config) { c.StoreDriver = "postgres" }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }},
		{"bot without token", func(c *Config) { c.BotEnabled = true }},
		{"bad timeout", func(c *Config) { c.NotifyTimeout = "soon" }},
		{"negative interval", func(c *Config) { c.BridgePushInterval = "-5s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("store_driver = [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
