// Package config resolves the portal client's configuration from defaults,
// a YAML config file, a .env file, PORTAL_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable the client reads.
const EnvPrefix = "PORTAL"

// Config holds configuration for the portal client.
type Config struct {
	BaseURL        string        // Backend API root, e.g. "https://portal.example.edu/api"
	Timeout        time.Duration // Per-request timeout; 0 leaves it to the transport
	SessionBackend string        // file, sqlite or memory
	SessionPath    string        // Session file or database path
	DownloadDir    string        // Where PDF downloads are saved
	LogLevel       string        // debug, info, warn, error
	LogFormat      string        // text, json
	Metrics        bool          // Print request metrics on exit
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8000/api",
		SessionBackend: "file",
		DownloadDir:    ".",
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}

// LoadOptions tells Load where to look besides the defaults and environment.
type LoadOptions struct {
	// ConfigFile is an explicit config file. When empty, ~/.portal/config.yaml
	// is used if it exists.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the environment if present.
	// Existing environment variables win over its entries.
	EnvFile string
	// Flags are bound by name; only flags the user set override other sources.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"server":          "base_url",
	"timeout":         "timeout",
	"session-backend": "session_backend",
	"session-path":    "session_path",
	"download-dir":    "download_dir",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"metrics":         "metrics",
}

// Load resolves the effective configuration.
func Load(opts LoadOptions) (Config, error) {
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("session_backend", def.SessionBackend)
	v.SetDefault("session_path", "")
	v.SetDefault("download_dir", def.DownloadDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("metrics", def.Metrics)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else if dir, err := Dir(); err == nil {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := Config{
		BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		Timeout:        v.GetDuration("timeout"),
		SessionBackend: strings.ToLower(strings.TrimSpace(v.GetString("session_backend"))),
		SessionPath:    strings.TrimSpace(v.GetString("session_path")),
		DownloadDir:    strings.TrimSpace(v.GetString("download_dir")),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		Metrics:        v.GetBool("metrics"),
	}

	if cfg.SessionPath == "" && cfg.SessionBackend != "memory" {
		p, err := DefaultSessionPath(cfg.SessionBackend)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionPath = p
	}

	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: missing host", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	switch c.SessionBackend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("session_backend %q: want file, sqlite or memory", c.SessionBackend)
	}
	if c.SessionBackend != "memory" && c.SessionPath == "" {
		return errors.New("session_path is required for the " + c.SessionBackend + " backend")
	}
	return nil
}

// YAML renders the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	out := struct {
		BaseURL        string `yaml:"base_url"`
		Timeout        string `yaml:"timeout"`
		SessionBackend string `yaml:"session_backend"`
		SessionPath    string `yaml:"session_path,omitempty"`
		DownloadDir    string `yaml:"download_dir"`
		LogLevel       string `yaml:"log_level"`
		LogFormat      string `yaml:"log_format"`
		Metrics        bool   `yaml:"metrics"`
	}{
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout.String(),
		SessionBackend: c.SessionBackend,
		SessionPath:    c.SessionPath,
		DownloadDir:    c.DownloadDir,
		LogLevel:       c.LogLevel,
		LogFormat:      c.LogFormat,
		Metrics:        c.Metrics,
	}
	return yaml.Marshal(out)
}

// Dir returns the client's configuration directory (~/.portal).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".portal"), nil
}

// DefaultSessionPath returns the default session location for a backend.
func DefaultSessionPath(backend string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if backend == "sqlite" {
		return filepath.Join(dir, "session.db"), nil
	}
	return filepath.Join(dir, "session.json"), nil
}
