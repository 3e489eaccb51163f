// Package config loads the server configuration from defaults, an optional TOML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

const DefaultPort = 3050

// Duration is a time.Duration read from strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Port int  `toml:"port"`
	Mode Mode `toml:"mode"`
	// DistDir holds the bundled assets and index.html.
	DistDir string `toml:"dist_dir"`
	// DevProxy is the URL of a bundler dev server. In development mode all
	// non-API requests are proxied there when it is set.
	DevProxy string `toml:"dev_proxy"`
	// StrictRoutes answers 404 with the index document for paths the route
	// table does not match.
	StrictRoutes    bool     `toml:"strict_routes"`
	LogLevel        string   `toml:"log_level"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	// ViewLatency delays the simulated deferred view fetches.
	ViewLatency Duration `toml:"view_latency"`
}

func Default() Config {
	return Config{
		Port:            DefaultPort,
		Mode:            ModeDevelopment,
		DistDir:         "dist",
		LogLevel:        "info",
		ShutdownTimeout: Duration{5 * time.Second},
	}
}

// Load reads the defaults, then the TOML file at path if path is not empty,
// then the environment through getenv (os.Getenv when nil).
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = port
	}
	switch {
	case getenv("APP_ENV") != "":
		c.Mode = ParseMode(getenv("APP_ENV"))
	case getenv("NODE_ENV") != "":
		c.Mode = ParseMode(getenv("NODE_ENV"))
	}
	if v := getenv("DIST_DIR"); v != "" {
		c.DistDir = v
	}
	if v := getenv("DEV_PROXY"); v != "" {
		c.DevProxy = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ParseMode maps "production" (and "prod") to production and anything else to
// development.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.DistDir == "" {
		errs = append(errs, errors.New("dist_dir is empty"))
	}
	if c.DevProxy != "" {
		u, err := url.Parse(c.DevProxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("dev_proxy %q is not an absolute URL", c.DevProxy))
		}
	}
	if c.ShutdownTimeout.Duration < 0 {
		errs = append(errs, errors.New("shutdown_timeout is negative"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) Production() bool {
	return c.Mode == ModeProduction
}
