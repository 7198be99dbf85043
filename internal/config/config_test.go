package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Port", cfg.Server.Port, DefaultPort},
		{"Server.ShutdownTimeout", cfg.Server.ShutdownTimeout, 10 * time.Second},
		{"GitHub.BaseURL", cfg.GitHub.BaseURL, DefaultGitHubURL},
		{"GitHub.Timeout", cfg.GitHub.Timeout, time.Duration(0)},
		{"Static.Prefix", cfg.Static.Prefix, "/static/"},
		{"Page.MountID", cfg.Page.MountID, "app"},
		{"Page.DataGlobal", cfg.Page.DataGlobal, "__INITIAL_DATA__"},
		{"Page.Bundle", cfg.Page.Bundle, "bundle.js"},
		{"Metrics.Enabled", cfg.Metrics.Enabled, true},
		{"Build.Output", cfg.Build.Output, DefaultOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != DefaultPort || cfg.GitHub.BaseURL != DefaultGitHubURL {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
server:
  port: 8080
  shutdown_timeout: 3s
github:
  timeout: 5s
static:
  s3:
    bucket: bundles
    path_style: true
log:
  format: json
`
	if err := os.WriteFile(filepath.Join(dir, "popular.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.GitHub.Timeout != 5*time.Second {
		t.Errorf("GitHub.Timeout = %v", cfg.GitHub.Timeout)
	}
	if cfg.Static.S3.Bucket != "bundles" || !cfg.Static.S3.PathStyle {
		t.Errorf("Static.S3 = %+v", cfg.Static.S3)
	}
	if cfg.Static.Prefix != DefaultStaticPrefix {
		t.Errorf("unset keys should keep defaults, Static.Prefix = %q", cfg.Static.Prefix)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POPULAR_SERVER_PORT", "9090")
	t.Setenv("POPULAR_GITHUB_TOKEN", "secret")
	t.Setenv("POPULAR_LOG_LEVEL", "debug")

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.GitHub.Token != "secret" {
		t.Errorf("GitHub.Token = %q", cfg.GitHub.Token)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestInitUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Init(viper.New(), path)
	if !errors.HasCode(err, errors.ConfigUnreadable) {
		t.Errorf("Init(bad file) = %v, want E100", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, errors.ConfigInvalidPort},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, errors.ConfigInvalidPort},
		{"prefix root", func(c *Config) { c.Static.Prefix = "/" }, errors.ConfigInvalidPrefix},
		{"prefix no slash", func(c *Config) { c.Static.Prefix = "static" }, errors.ConfigInvalidPrefix},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, errors.ConfigInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAddrAndURL(t *testing.T) {
	cfg := New()
	if got := cfg.Addr(); got != ":3000" {
		t.Errorf("Addr() = %q", got)
	}
	if got := cfg.URL(); got != "http://localhost:3000" {
		t.Errorf("URL() = %q", got)
	}

	cfg.Server.Host = "127.0.0.1"
	if got := cfg.URL(); got != "http://127.0.0.1:3000" {
		t.Errorf("URL() = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}
