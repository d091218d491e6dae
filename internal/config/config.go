package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const DefaultConfigFileName = "config.toml"

type Config struct {
	StoreDriver string `toml:"store_driver"`
	SQLitePath  string `toml:"sqlite_path"`
	DatabaseURI string `toml:"database_uri"`
	ListenAddr  string `toml:"listen_addr"`

	TelegramToken    string `toml:"telegram_token"`
	TelegramChatID   string `toml:"telegram_chat_id"`
	TelegramEndpoint string `toml:"telegram_endpoint"`
	BotEnabled       bool   `toml:"bot_enabled"`
	NotifyTimeout    string `toml:"notify_timeout"`

	BridgeURL           string `toml:"bridge_url"`
	BridgePushInterval  string `toml:"bridge_push_interval"`
	BridgeRetryInterval string `toml:"bridge_retry_interval"`

	AIAPIKey  string `toml:"ai_api_key"`
	AIBaseURL string `toml:"ai_base_url"`
	AIModel   string `toml:"ai_model"`
}

func defaultConfig() Config {
	return Config{
		StoreDriver:         "sqlite",
		SQLitePath:          "diditakeit.db",
		ListenAddr:          "127.0.0.1:8787",
		NotifyTimeout:       "5s",
		BridgePushInterval:  "30s",
		BridgeRetryInterval: "15s",
		AIBaseURL:           "https://openrouter.ai/api/v1",
		AIModel:             "openai/gpt-4o-mini",
	}
}

// Load layers defaults, the optional TOML file at path, a .env file and
// the process environment, later layers winning.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// config file is optional
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		// .env file is optional
	}

	cfg.StoreDriver = getEnvOrDefault("STORE_DRIVER", cfg.StoreDriver)
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURI = getEnvOrDefault("DATABASE_URI", cfg.DatabaseURI)
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.TelegramToken = getEnvOrDefault("TELEGRAM_TOKEN", cfg.TelegramToken)
	cfg.TelegramChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	cfg.TelegramEndpoint = getEnvOrDefault("TELEGRAM_ENDPOINT", cfg.TelegramEndpoint)
	cfg.BotEnabled = getBoolEnv("BOT_ENABLED", cfg.BotEnabled)
	cfg.NotifyTimeout = getEnvOrDefault("NOTIFY_TIMEOUT", cfg.NotifyTimeout)
	cfg.BridgeURL = getEnvOrDefault("BRIDGE_URL", cfg.BridgeURL)
	cfg.BridgePushInterval = getEnvOrDefault("BRIDGE_PUSH_INTERVAL", cfg.BridgePushInterval)
	cfg.BridgeRetryInterval = getEnvOrDefault("BRIDGE_RETRY_INTERVAL", cfg.BridgeRetryInterval)
	cfg.AIAPIKey = getEnvOrDefault("AI_API_KEY", cfg.AIAPIKey)
	cfg.AIBaseURL = getEnvOrDefault("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AIModel = getEnvOrDefault("AI_MODEL", cfg.AIModel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURI == "" {
			return errors.New("DATABASE_URI is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.BotEnabled && c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required when BOT_ENABLED is set")
	}
	for name, v := range map[string]string{
		"NOTIFY_TIMEOUT":        c.NotifyTimeout,
		"BRIDGE_PUSH_INTERVAL":  c.BridgePushInterval,
		"BRIDGE_RETRY_INTERVAL": c.BridgeRetryInterval,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) NotifyTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.NotifyTimeout)
	return d
}

func (c *Config) BridgePushDuration() time.Duration {
	d, _ := parseDuration(c.BridgePushInterval)
	return d
}

func (c *Config) BridgeRetryDuration() time.Duration {
	d, _ := parseDuration(c.BridgeRetryInterval)
	return d
}

// parseDuration accepts Go durations ("5s", "1m30s") or whole seconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("%q must be positive", v)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%q must be positive", v)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
