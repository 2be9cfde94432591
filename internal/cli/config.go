package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CNGAME"

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// registerFlags declares the persistent flags every command shares
func registerFlags(flags *pflag.FlagSet) {
	flags.String("server", "http://localhost:8080", "Server URL (env: CNGAME_SERVER)")
	flags.String("token", "", "Session token (env: CNGAME_TOKEN)")
	flags.String("token-file", defaultTokenFile(), "Token file path (env: CNGAME_TOKEN_FILE)")
	flags.StringP("output", "o", "text", "Output format: text, json (env: CNGAME_OUTPUT)")
	flags.BoolP("verbose", "v", false, "Log requests to stderr (env: CNGAME_VERBOSE)")
}

// loadConfig resolves flags over CNGAME_* environment variables over defaults
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	c := &Config{
		ServerURL: v.GetString("server"),
		Token:     strings.TrimSpace(v.GetString("token")),
		TokenFile: v.GetString("token-file"),
		Output:    v.GetString("output"),
		Verbose:   v.GetBool("verbose"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks option values
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q: want text or json", c.Output)
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.ServerURL)
	}
	return nil
}

// LoadToken reads the token file unless a token was given directly.
// A missing file leaves the CLI unauthenticated.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken remembers the token for later commands
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token), 0o600)
}

// ForgetToken deletes the saved token
func (c *Config) ForgetToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cngame", "token")
	}
	return filepath.Join(home, ".cngame", "token")
}
