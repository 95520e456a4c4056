package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/nwatteau/linktrap/internal/errors"
)

// Config represents the main structure mapping the entire application configuration.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP listen port (default: 5000)
		BaseURL string `mapstructure:"base_url"` // externally advertised base URL for minted links
	} `mapstructure:"server"`

	// Bot configuration for the Telegram transport
	Bot struct {
		Token string `mapstructure:"token"` // bot credential, required at startup
	} `mapstructure:"bot"`

	// Shortener configuration for the optional external shortening integration
	Shortener struct {
		Enabled        bool   `mapstructure:"enabled"`
		Endpoint       string `mapstructure:"endpoint"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"shortener"`

	// Tracking configuration for the decoy-page surface
	Tracking struct {
		AboutURL string `mapstructure:"about_url"` // soft-fail redirect target for truncated paths
	} `mapstructure:"tracking"`

	// Notifications configuration for asynchronous visit alerts
	Notifications struct {
		BufferSize  int `mapstructure:"buffer_size"`  // size of the visit event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // number of worker goroutines sending alerts
	} `mapstructure:"notifications"`

	// Monitor configuration for external-dependency health checking
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper.
// It supports environment variable overrides (BOT_TOKEN, SERVER_PORT, ...) and a
// YAML configuration file under ./configs.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()

	// "bot.token" becomes the BOT_TOKEN environment variable, etc.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.base_url", "http://localhost:5000")
	viper.SetDefault("bot.token", "")
	viper.SetDefault("shortener.enabled", false)
	viper.SetDefault("shortener.endpoint", "https://short-link-api.vercel.app/")
	viper.SetDefault("shortener.timeout_seconds", 10)
	viper.SetDefault("tracking.about_url", "https://github.com/nwatteau/linktrap")
	viper.SetDefault("notifications.buffer_size", 100)
	viper.SetDefault("notifications.worker_count", 2)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults plus environment overrides still apply.
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	log.Printf("Configuration loaded: Port=%d, BaseURL=%s, Shortener=%t, Monitor Interval=%dmin",
		cfg.Server.Port, cfg.Server.BaseURL, cfg.Shortener.Enabled, cfg.Monitor.IntervalMinutes)

	return &cfg, nil
}

// ValidateForServer checks the settings the server cannot run without.
// A missing bot credential is a startup-fatal condition, never a degraded mode.
func (c *Config) ValidateForServer() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return apperrors.ErrBotTokenMissing
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Shortener.Enabled && strings.TrimSpace(c.Shortener.Endpoint) == "" {
		return fmt.Errorf("shortener enabled but no endpoint configured")
	}
	return nil
}
