package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Corpus   CorpusConfig      `yaml:"corpus"`
	Index    IndexConfig       `yaml:"index"`
	External ExternalConfig    `yaml:"external"`
	Fixes    FixesConfig       `yaml:"fixes"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.External.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CorpusConfig describes the documentation tree being checked.
type CorpusConfig struct {
	// Root is the directory all link targets resolve against.
	Root string `yaml:"root"`
	// Include lists glob patterns selecting documents; empty means "**/*.md".
	Include []string `yaml:"include"`
	// Extensions are the document extensions, in priority order, tried by
	// the missing-extension fix rule.
	Extensions []string `yaml:"extensions"`
	// ActiveDir is the primary documentation directory.
	ActiveDir string `yaml:"active_dir"`
	// ArchiveDir is where retired documents are moved.
	ArchiveDir string `yaml:"archive_dir"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// IndexConfig holds SQLite corpus index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ExternalConfig controls external URL probing.
type ExternalConfig struct {
	// TimeoutSeconds bounds one HEAD probe; zero means the built-in default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// PlaceholderHosts are documentation-example domains (example.com and
	// friends) reported valid without probing.
	PlaceholderHosts []string `yaml:"placeholder_hosts"`
	// TrustedHosts are allowlisted domains exempt from probing.
	TrustedHosts []string `yaml:"trusted_hosts"`
}

// Timeout returns the probe timeout as a duration.
func (c *ExternalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the external URL configuration.
func (c *ExternalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TimeoutSeconds, validation.Min(0), validation.Max(300)),
	)
}

// FixesConfig carries user-maintained repair knowledge.
type FixesConfig struct {
	// Replacements maps retired link targets to their replacements,
	// matched against the exact target string.
	Replacements map[string]string `yaml:"replacements"`
}

// AuthConfig holds authentication configuration for serve mode.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Root:       ".",
			Extensions: []string{".md", ".markdown"},
			ActiveDir:  "docs",
			ArchiveDir: "docs/archived",
		},
		Index: IndexConfig{
			Path: "./doclink.db",
		},
		External: ExternalConfig{
			TimeoutSeconds: 5,
			PlaceholderHosts: []string{
				"example.com",
				"example.org",
				"example.net",
				"localhost",
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
