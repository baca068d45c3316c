// Package config loads runtime settings from the environment.
//
// An optional .env file in the working directory is read first; variables
// already set in the process environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dreamware/gradeshard/internal/fragment"
)

// Defaults match a local PostgreSQL with one database per fragment.
const (
	DefaultFragmentCount  = 3
	DefaultDriver         = fragment.DriverPostgres
	DefaultDSNTemplate    = "host=localhost port=5432 user=user password=password dbname=frag_%d sslmode=disable"
	DefaultBaselineDSN    = "host=localhost port=5432 user=user password=password dbname=single_db sslmode=disable"
	DefaultServerAddr     = ":8080"
	DefaultHealthInterval = 10 * time.Second
)

// Config holds every runtime setting.
type Config struct {
	FragmentCount  int
	Driver         string
	DSNTemplate    string
	DSNs           []string // explicit per-fragment DSNs; overrides DSNTemplate
	BaselineDSN    string
	ServerAddr     string
	QueryTimeout   time.Duration
	HealthInterval time.Duration
	AutoMigrate    bool
}

// Load reads the given env files, or .env when none are named, and then the
// environment. Missing files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Driver:      getenv("FRAGMENT_DRIVER", DefaultDriver),
		DSNTemplate: getenv("FRAGMENT_DSN_TEMPLATE", DefaultDSNTemplate),
		BaselineDSN: getenv("BASELINE_DSN", DefaultBaselineDSN),
		ServerAddr:  getenv("SERVER_ADDR", DefaultServerAddr),
	}

	var err error
	if cfg.FragmentCount, err = getInt("FRAGMENT_COUNT", DefaultFragmentCount); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = getDuration("QUERY_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.HealthInterval, err = getDuration("HEALTH_INTERVAL", DefaultHealthInterval); err != nil {
		return nil, err
	}
	if cfg.AutoMigrate, err = getBool("AUTO_MIGRATE", false); err != nil {
		return nil, err
	}

	if raw := getenv("FRAGMENT_DSNS", ""); raw != "" {
		for _, dsn := range strings.Split(raw, ";") {
			if dsn = strings.TrimSpace(dsn); dsn != "" {
				cfg.DSNs = append(cfg.DSNs, dsn)
			}
		}
		cfg.FragmentCount = len(cfg.DSNs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be used to open fragments
func (c *Config) Validate() error {
	if c.FragmentCount < 1 {
		return fmt.Errorf("FRAGMENT_COUNT must be at least 1, got %d", c.FragmentCount)
	}
	switch c.Driver {
	case fragment.DriverPostgres, fragment.DriverMySQL, fragment.DriverSQLite:
	default:
		return fmt.Errorf("unsupported FRAGMENT_DRIVER %q", c.Driver)
	}
	if len(c.DSNs) == 0 && !strings.Contains(c.DSNTemplate, "%d") {
		return fmt.Errorf("FRAGMENT_DSN_TEMPLATE must contain %%d, got %q", c.DSNTemplate)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("QUERY_TIMEOUT cannot be negative, got %v", c.QueryTimeout)
	}
	return nil
}

// FragmentConfigs returns one connection config per fragment index.
func (c *Config) FragmentConfigs() []fragment.Config {
	cfgs := make([]fragment.Config, c.FragmentCount)
	for i := range cfgs {
		dsn := fmt.Sprintf(c.DSNTemplate, i)
		if len(c.DSNs) > 0 {
			dsn = c.DSNs[i]
		}
		cfgs[i] = fragment.Config{ID: i, Driver: c.Driver, DSN: dsn}
	}
	return cfgs
}

// BaselineConfig returns the single unsharded database as fragment 0.
func (c *Config) BaselineConfig() []fragment.Config {
	return []fragment.Config{{ID: 0, Driver: c.Driver, DSN: c.BaselineDSN}}
}

// getenv retrieves an environment variable with a fallback default value.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return n, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return d, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return b, nil
}
