// Package config loads CLI configuration from the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/neonapi"
	"neonrpc/cli/internal/xdg"
)

// FileName is the config file name inside the config dir.
const FileName = "config.yaml"

// Environment overrides.
const (
	EnvBaseURL  = "NEON_API_BASE_URL"
	EnvLogLevel = "NEONRPC_LOG_LEVEL"
	EnvHTTPAddr = "NEONRPC_HTTP_ADDR"
	EnvGRPCAddr = "NEONRPC_GRPC_ADDR"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
	API       APIConfig   `yaml:"api"`
	Serve     ServeConfig `yaml:"serve"`
}

// APIConfig configures the upstream Neon client.
type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
}

// ServeConfig holds optional listener addresses for `neonrpc serve`.
// Empty means the listener is disabled.
type ServeConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		API: APIConfig{
			BaseURL:  neonapi.DefaultBaseURL,
			Timeout:  30 * time.Second,
			PageSize: 100,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads configuration from path (the default location when empty),
// applies environment overrides and validates the result. A missing file
// yields defaults.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return c, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, errors.Wrap(errors.ConfigInvalid, "read "+path, err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, errors.Wrap(errors.ConfigInvalid, "parse "+path, err)
		}
	}

	c.applyEnv(lookup)
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvBaseURL, &c.API.BaseURL)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvHTTPAddr, &c.Serve.HTTPAddr)
	set(EnvGRPCAddr, &c.Serve.GRPCAddr)
}

// Save writes c as YAML to path, or to the default location under a
// freshly created config dir when path is empty.
func Save(path string, c Config) (string, error) {
	if path == "" {
		dir, err := xdg.ConfigDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, FileName)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.Wrap(errors.ConfigInvalid, "write "+path, err)
	}
	return path, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ConfigInvalid, fmt.Sprintf("log_level %q is not one of trace|debug|info|warn|error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.New(errors.ConfigInvalid, fmt.Sprintf("log_format %q is not text or json", c.LogFormat))
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ConfigInvalid, fmt.Sprintf("api.base_url %q is not an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		return errors.New(errors.ConfigInvalid, "api.timeout must not be negative")
	}
	if c.API.PageSize <= 0 {
		return errors.New(errors.ConfigInvalid, "api.page_size must be positive")
	}
	return nil
}
