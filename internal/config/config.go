package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is everything campwatch needs beyond the command line flags. It is
// constructed once and passed in explicitly; nothing reads it ambiently.
type Config struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	DelaySeconds int           `mapstructure:"delay_seconds"`
	Search       SearchConfig  `mapstructure:"search"`
	Logging      LoggingConfig `mapstructure:"logging"`
	Discord      DiscordConfig `mapstructure:"discord"`
}

type SearchConfig struct {
	CampsiteType string `mapstructure:"campsite_type"`
	AllNights    bool   `mapstructure:"all_nights"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Delay is the pause between park queries.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// NotifyEnabled reports whether Discord notifications are configured.
func (c *Config) NotifyEnabled() bool {
	return c.Discord.Token != "" && c.Discord.ChannelID != ""
}

// Load reads the config file at configPath, or searches the standard
// locations when configPath is empty. A missing file is only an error when a
// path was given explicitly; otherwise defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("campwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".campwatch"))
		}
		v.AddConfigPath("/etc/campwatch/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "recreation_gov")
	v.SetDefault("delay_seconds", 20)
	v.SetDefault("logging.level", "info")
	v.SetDefault("search.all_nights", false)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Provider == "" {
		return fmt.Errorf("provider is required")
	}

	if cfg.DelaySeconds < 0 {
		return fmt.Errorf("delay_seconds must not be negative")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	if (cfg.Discord.Token == "") != (cfg.Discord.ChannelID == "") {
		return fmt.Errorf("discord.token and discord.channel_id must be set together")
	}

	return nil
}
