// Package config loads process settings from flags, GARDEN_* environment
// variables and an optional YAML file. Per-user garden data such as frost
// dates lives in the database instead.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/plotwise/garden/internal/logging"
)

const EnvPrefix = "GARDEN"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	DB        string          `mapstructure:"db"`
	LogLevel  string          `mapstructure:"log_level"`
	Server    ServerConfig    `mapstructure:"server"`
	Wikimedia WikimediaConfig `mapstructure:"wikimedia"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	Environment        string `mapstructure:"environment"`
	ForceHTTPS         bool   `mapstructure:"force_https"`
	TrustedProxyHeader string `mapstructure:"trusted_proxy_header"`
}

type WikimediaConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	UserAgent         string  `mapstructure:"user_agent"`
}

func (c ServerConfig) Production() bool {
	return c.Environment == EnvProduction
}

type LoadOptions struct {
	// File is an explicit config path; it must exist when set.
	File string
	// DefaultFile is read only if present.
	DefaultFile string
	// Overrides win over every other source, e.g. flags the user set.
	Overrides map[string]any
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", EnvDevelopment)
	v.SetDefault("server.force_https", false)
	v.SetDefault("server.trusted_proxy_header", "X-Forwarded-Proto")
	v.SetDefault("wikimedia.base_url", "https://commons.wikimedia.org/w/api.php")
	v.SetDefault("wikimedia.requests_per_second", 1.0)
	v.SetDefault("wikimedia.user_agent", "garden-cli/1.0 (+https://github.com/plotwise/garden)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	switch {
	case strings.TrimSpace(opts.File) != "":
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	case strings.TrimSpace(opts.DefaultFile) != "":
		if _, err := os.Stat(opts.DefaultFile); err == nil {
			v.SetConfigFile(opts.DefaultFile)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", opts.DefaultFile, err)
			}
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.Environment = strings.ToLower(strings.TrimSpace(cfg.Server.Environment))
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("server.environment must be one of development, production, test (got %q)", c.Server.Environment))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	} else if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.addr %q: %w", c.Server.Addr, err))
	}
	if c.Server.ForceHTTPS && strings.TrimSpace(c.Server.TrustedProxyHeader) == "" {
		errs = append(errs, errors.New("server.trusted_proxy_header is required when server.force_https is set"))
	}
	if c.Wikimedia.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("wikimedia.requests_per_second must be > 0 (got %v)", c.Wikimedia.RequestsPerSecond))
	}
	if strings.TrimSpace(c.Wikimedia.BaseURL) == "" {
		errs = append(errs, errors.New("wikimedia.base_url is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
