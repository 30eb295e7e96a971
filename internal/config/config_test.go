package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/neonapi"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	c, err := load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if c.API.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", c.API.PageSize)
	}
	if c.API.BaseURL != neonapi.DefaultBaseURL {
		t.Errorf("BaseURL = %q", c.API.BaseURL)
	}
	if c.API.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", c.API.Timeout)
	}
	if c.LogLevel != "info" || c.LogFormat != "text" {
		t.Errorf("log settings = %q/%q", c.LogLevel, c.LogFormat)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	p := writeFile(t, `
log_level: debug
log_format: json
api:
  base_url: https://example.test/api/v2
  timeout: 5s
  page_size: 25
serve:
  http_addr: 127.0.0.1:8080
`)
	env := map[string]string{
		EnvGRPCAddr: ":9090",
		EnvLogLevel: "warn",
	}
	c, err := load(p, func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if err != nil {
		t.Fatal(err)
	}

	if c.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override", c.LogLevel)
	}
	if c.LogFormat != "json" {
		t.Errorf("LogFormat = %q", c.LogFormat)
	}
	if c.API.BaseURL != "https://example.test/api/v2" || c.API.Timeout != 5*time.Second || c.API.PageSize != 25 {
		t.Errorf("API = %+v", c.API)
	}
	if c.Serve.HTTPAddr != "127.0.0.1:8080" || c.Serve.GRPCAddr != ":9090" {
		t.Errorf("Serve = %+v", c.Serve)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "api: [unterminated"},
		{"bad level", "log_level: loud"},
		{"bad format", "log_format: xml"},
		{"bad url", "api:\n  base_url: console.neon.tech"},
		{"zero page size", "api:\n  page_size: 0"},
		{"negative timeout", "api:\n  timeout: -1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeFile(t, tt.body), noEnv)
			if !errors.Is(err, errors.ConfigInvalid) {
				t.Fatalf("err = %v, want config_invalid", err)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	c := Default()
	c.API.PageSize = 25
	c.API.Timeout = 5 * time.Second
	c.Serve.HTTPAddr = "127.0.0.1:8080"

	p, err := Save(filepath.Join(t.TempDir(), FileName), c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := load(p, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("loaded %+v, want %+v", got, c)
	}
}

func TestSave_DefaultLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	p, err := Save("", Default())
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Path()
	if p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}
