// Package config loads client settings from defaults, an optional YAML file,
// a .env file and FINANCAS_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINANCAS_API_URL
const EnvPrefix = "FINANCAS"

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type RetryConfig struct {
	Max     int           `mapstructure:"max"`
	Wait    time.Duration `mapstructure:"wait"`
	MaxWait time.Duration `mapstructure:"max_wait"`
}

type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

// Load reads configuration. path may be empty, in which case an optional
// financas.yaml in the working directory or the user config dir is used.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("financas")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "financas"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:3333/api")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("retry.max", 0)
	v.SetDefault("retry.wait", time.Second)
	v.SetDefault("retry.max_wait", 5*time.Second)
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "financas", "state.json")
}

// Validate collects every problem instead of stopping at the first
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid api_url %q", c.APIURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid api_url scheme %q: must be http or https", u.Scheme))
	}

	switch c.Storage.Backend {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			problems = append(problems, fmt.Sprintf("storage.path cannot be empty for backend %q", c.Storage.Backend))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage.backend %q: must be one of [file sqlite memory]", c.Storage.Backend))
	}

	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}

	if c.Retry.Max < 0 {
		problems = append(problems, "retry.max cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
