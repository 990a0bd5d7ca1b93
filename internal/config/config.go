// Package config loads engine configuration from a config file and
// environment variables via viper.
//
// Every key may be set in config.yaml (searched in the working directory and
// /etc/paluwagan) or through an environment variable with the PALUWAGAN_
// prefix, e.g. PALUWAGAN_HTTP_PORT=9090.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the engine.
type Config struct {
	// HTTPPort is the port the API server listens on.
	HTTPPort int `mapstructure:"http_port"`
	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"db_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// MemberCapacity bounds how many members a group may hold.
	MemberCapacity int `mapstructure:"member_capacity"`
	// AllowRepeatMembers permits a client to hold multiple positions in the
	// same group.
	AllowRepeatMembers bool `mapstructure:"allow_repeat_members"`
	// CascadeClientDelete lets client deletion take memberships and their
	// ledger rows along instead of failing.
	CascadeClientDelete bool `mapstructure:"cascade_client_delete"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. A missing config file is fine; a malformed one is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/paluwagan")

	v.SetEnvPrefix("PALUWAGAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("db_path", "paluwagan.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("member_capacity", 16)
	v.SetDefault("allow_repeat_members", false)
	v.SetDefault("cascade_client_delete", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.MemberCapacity < 1 {
		return nil, fmt.Errorf("member_capacity must be at least 1, got %d", cfg.MemberCapacity)
	}
	return cfg, nil
}
