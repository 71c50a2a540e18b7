// Package config loads the server configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config file (any format viper reads: yaml, toml, json), and environment
// variables named after the keys in upper case (PORT, DB_PATH, ...).
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Port int `mapstructure:"port"`
	// DBPath is the SQLite file; ":memory:" keeps everything in RAM.
	DBPath string `mapstructure:"db_path"`
	// StaticDir holds index.html, the page fragments and app.js. The
	// front-end is not served when the directory does not exist.
	StaticDir string `mapstructure:"static_dir"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" allows any.
	CORSOrigins string `mapstructure:"cors_origins"`
	LogLevel    string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"port":         8080,
	"db_path":      "data/mailinglist.db",
	"static_dir":   "web/static",
	"cors_origins": "*",
	"log_level":    "info",
}

// Load reads the configuration. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("config: db_path must not be empty")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AllowedOrigins splits CORSOrigins into a list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// ParseLevel maps debug/info/warn/error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q", s)
	}
	return level, nil
}
