package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file (popular.yaml).
	ConfigName = "popular"

	// EnvPrefix prefixes environment overrides, e.g. POPULAR_SERVER_PORT.
	EnvPrefix = "POPULAR"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultGitHubURL is the GitHub REST API root.
	DefaultGitHubURL = "https://api.github.com"

	// DefaultStaticPrefix is the URL prefix the client bundle is served under.
	DefaultStaticPrefix = "/static/"

	// DefaultOutput is the default bundle output directory.
	DefaultOutput = "public"
)

// Config represents the complete popular configuration.
// Values come from popular.yaml, POPULAR_* env vars and CLI flags.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Static  StaticConfig  `mapstructure:"static"`
	Page    PageConfig    `mapstructure:"page"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
	Dev     DevConfig     `mapstructure:"dev"`
	Build   BuildConfig   `mapstructure:"build"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GitHubConfig configures the repository search client.
type GitHubConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// Token is sent as a bearer token when set.
	Token string `mapstructure:"token"`

	// Timeout bounds each search request. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing the built bundle.
	Dir string `mapstructure:"dir"`

	// Prefix is the URL prefix for static files.
	Prefix string `mapstructure:"prefix"`

	// S3 switches the origin to a bucket when Bucket is set.
	S3 S3Config `mapstructure:"s3"`
}

// S3Config points the static origin at an S3 bucket.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle bool   `mapstructure:"path_style"`
}

// PageConfig controls the HTML document shell.
type PageConfig struct {
	Title      string `mapstructure:"title"`
	MountID    string `mapstructure:"mount_id"`
	DataGlobal string `mapstructure:"data_global"`

	// Bundle is the loader script's asset name, resolved through the
	// build manifest under Static.Prefix.
	Bundle string `mapstructure:"bundle"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Enabled turns on bundle watching and the live reload endpoint.
	Enabled bool `mapstructure:"enabled"`
}

// BuildConfig contains bundle build settings.
type BuildConfig struct {
	// Output is the directory the browser bundle is written to.
	Output string `mapstructure:"output"`

	// ServerOutput is the path of the server binary.
	ServerOutput string `mapstructure:"server_output"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ShutdownTimeout: 10 * time.Second,
		},
		GitHub: GitHubConfig{
			BaseURL: DefaultGitHubURL,
		},
		Static: StaticConfig{
			Dir:    DefaultOutput,
			Prefix: DefaultStaticPrefix,
		},
		Page: PageConfig{
			Title:      "Popular Repos",
			MountID:    "app",
			DataGlobal: "__INITIAL_DATA__",
			Bundle:     "bundle.js",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "popular",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Build: BuildConfig{
			Output:       DefaultOutput,
			ServerOutput: "bin/popular",
		},
	}
}

// SetDefaults registers every key with its default value. Viper only
// consults the environment for keys it knows, so this must run before Load.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("github.base_url", d.GitHub.BaseURL)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("static.dir", d.Static.Dir)
	v.SetDefault("static.prefix", d.Static.Prefix)
	v.SetDefault("static.s3.bucket", "")
	v.SetDefault("static.s3.region", "")
	v.SetDefault("static.s3.endpoint", "")
	v.SetDefault("static.s3.prefix", "")
	v.SetDefault("static.s3.path_style", false)
	v.SetDefault("page.title", d.Page.Title)
	v.SetDefault("page.mount_id", d.Page.MountID)
	v.SetDefault("page.data_global", d.Page.DataGlobal)
	v.SetDefault("page.bundle", d.Page.Bundle)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("dev.enabled", d.Dev.Enabled)
	v.SetDefault("build.output", d.Build.Output)
	v.SetDefault("build.server_output", d.Build.ServerOutput)
}

// Init points v at the config file and the environment. With an empty
// cfgFile it looks for popular.yaml in the working directory; a missing
// file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil
		}
		return errors.New(errors.ConfigUnreadable).Wrap(err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.ConfigUnreadable).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ConfigInvalidPort).
			WithDetailf("server.port is %d; it must be between 1 and 65535", c.Server.Port)
	}
	p := c.Static.Prefix
	if len(p) < 3 || !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
		return errors.New(errors.ConfigInvalidPrefix).
			WithDetailf("static.prefix is %q; it must look like /static/", p)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns a URL for reaching the server locally.
func (c *Config) URL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(c.Server.Port)))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.New(errors.ConfigInvalidLevel).WithDetailf("log.level is %q", s)
}

// NewLogger builds the process logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
