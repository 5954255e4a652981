// Package config handles the XDG configuration directory and settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "rtask"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// CredentialsDir is the directory used by the file keyring backend.
	CredentialsDir = "credentials"

	// EnvPrefix prefixes environment overrides, e.g. RTASK_BASE_URL.
	EnvPrefix = "RTASK"

	// DefaultBaseURL is the API root used when none is configured.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 10 * time.Second
)

// OAuthConfig holds client-credentials settings. The flow is enabled
// when ClientID is set.
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Enabled reports whether the client-credentials flow is configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != ""
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// BaseURL is the root of the remote task API.
	BaseURL string

	// Timeout bounds each remote request.
	Timeout time.Duration

	// Token is a static bearer token. When empty the keyring is consulted.
	Token string

	// KeyringBackend restricts the keyring to one backend (e.g. "file").
	// Empty means the platform default order.
	KeyringBackend string

	OAuth OAuthConfig
}

// Flags that override settings when set on the command line.
var flagKeys = map[string]string{
	"base-url": "base_url",
	"timeout":  "timeout",
}

// New creates a Config for the default or specified config directory and
// loads config.yaml plus RTASK_* environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/rtask or $HOME/.config/rtask.
// A missing config.yaml is not an error.
func New(configDir string) (*Config, error) {
	return Load(configDir, nil)
}

// Load is like New, but values of --base-url and --timeout in flags take
// precedence over the environment and the file. flags may be nil.
func Load(configDir string, flags *pflag.FlagSet) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load(flags *pflag.FlagSet) error {
	v := viper.New()
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}
	v.SetConfigFile(c.Path())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("token", "")
	v.SetDefault("keyring_backend", "")
	v.SetDefault("oauth.token_url", "")
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.scopes", []string{})

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return fmt.Errorf("reading config %s: %w", c.Path(), err)
		}
	}

	c.BaseURL = strings.TrimRight(v.GetString("base_url"), "/")
	c.Timeout = v.GetDuration("timeout")
	c.Token = v.GetString("token")
	c.KeyringBackend = v.GetString("keyring_backend")
	c.OAuth = OAuthConfig{
		TokenURL:     v.GetString("oauth.token_url"),
		ClientID:     v.GetString("oauth.client_id"),
		ClientSecret: v.GetString("oauth.client_secret"),
		Scopes:       v.GetStringSlice("oauth.scopes"),
	}

	if c.BaseURL == "" {
		return fmt.Errorf("invalid config %s: base_url is empty", c.Path())
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid config %s: timeout must be positive", c.Path())
	}
	if c.OAuth.Enabled() && c.OAuth.TokenURL == "" {
		return fmt.Errorf("invalid config %s: oauth.token_url is required with oauth.client_id", c.Path())
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the path to config.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// CredentialsPath returns the directory of the file keyring backend.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsDir)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
