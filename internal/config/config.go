package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Notifier type constants.
const (
	NotifierConsole  = "console"
	NotifierTelegram = "telegram"
)

type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notifier  NotifierConfig  `koanf:"notifier"`
	YouTube   YouTubeConfig   `koanf:"youtube"`
	UI        UIConfig        `koanf:"ui"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type SchedulerConfig struct {
	PollInterval   int `koanf:"poll_interval"`   // seconds between timer wakes
	SnoozeMinutes  int `koanf:"snooze_minutes"`  // offset added to now on snooze
	ConfirmTimeout int `koanf:"confirm_timeout"` // seconds to wait for a yes/no answer
}

type NotifierConfig struct {
	Type     string         `koanf:"type"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type YouTubeConfig struct {
	APIKey string `koanf:"api_key"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("MEDREMIND_", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Common credentials can come straight from the environment.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("notifier.telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("notifier.telegram.chat_id", chatID)
	}
	if apiKey := os.Getenv("YOUTUBE_API_KEY"); apiKey != "" {
		k.Set("youtube.api_key", apiKey)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.Scheduler.SnoozeMinutes <= 0 {
		return fmt.Errorf("snooze_minutes must be positive")
	}
	if c.Scheduler.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirm_timeout must be positive")
	}

	switch c.Notifier.Type {
	case NotifierConsole:
	case NotifierTelegram:
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notifier requires bot_token and chat_id (set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID or add them to the config file)")
		}
	default:
		return fmt.Errorf("unknown notifier type: %s (supported: %s, %s)",
			c.Notifier.Type, NotifierConsole, NotifierTelegram)
	}

	return nil
}

// PollInterval returns the scheduler poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Scheduler.PollInterval) * time.Second
}

// SnoozeOffset returns the snooze offset as a duration.
func (c *Config) SnoozeOffset() time.Duration {
	return time.Duration(c.Scheduler.SnoozeMinutes) * time.Minute
}

// ConfirmTimeout returns how long a confirmation waits for an answer.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.Scheduler.ConfirmTimeout) * time.Second
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
