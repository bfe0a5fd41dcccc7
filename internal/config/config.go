package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config represents the entire careerprep configuration
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
	Cache          CacheConfig        `toml:"cache"`
	Breaker        BreakerConfig      `toml:"breaker"`
	Database       DatabaseConfig     `toml:"database"`
	Server         ServerConfig       `toml:"server"`

	path string
}

// Profile represents an LLM provider configuration
type Profile struct {
	Name          string         `toml:"-"`        // Set from map key
	Provider      string         `toml:"provider"` // "gemini", "openai", "anthropic", "ollama"
	Model         string         `toml:"model"`
	ContextWindow int            `toml:"context_window,omitempty"` // Max context window in tokens (defaults to 8192)
	Options       map[string]any `toml:"options,omitempty"`
}

// CacheConfig controls the generation cache
type CacheConfig struct {
	TTL           string `toml:"ttl"`            // e.g. "24h"
	MaxEntries    int    `toml:"max_entries"`    // 0 = unbounded
	SweepInterval string `toml:"sweep_interval"` // 0 = lazy expiry only
	Coalesce      bool   `toml:"coalesce"`
}

// BreakerConfig controls the circuit breaker around provider calls
type BreakerConfig struct {
	Enabled      bool    `toml:"enabled"`
	FailureRatio float64 `toml:"failure_ratio"`
	MinRequests  uint32  `toml:"min_requests"`
	OpenTimeout  string  `toml:"open_timeout"`
}

// DatabaseConfig selects the persistence backend
type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "postgres"
	DSN    string `toml:"dsn"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Listen     string `toml:"listen"`
	AdminToken string `toml:"admin_token,omitempty"` // empty disables /admin routes
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		DefaultProfile: "gemini-flash",
		Profiles: map[string]Profile{
			"gemini-flash": {
				Name:     "gemini-flash",
				Provider: "gemini",
				Model:    "gemini-2.0-flash",
			},
		},
		Cache: CacheConfig{
			TTL:      "24h",
			Coalesce: true,
		},
		Breaker: BreakerConfig{
			Enabled:      false,
			FailureRatio: 0.6,
			MinRequests:  5,
			OpenTimeout:  "60s",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// Load reads the configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the configuration from path, or from the default
// location when path is empty. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	configPath := path
	if configPath == "" {
		configPath = getConfigPath()
	}
	cfg.path = configPath

	// Check if config file exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if path != "" {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	// Set profile names from map keys
	for name, profile := range cfg.Profiles {
		profile.Name = name
		cfg.Profiles[name] = profile
	}

	// Override with environment variables if set
	if profile := os.Getenv("CAREERPREP_PROFILE"); profile != "" {
		cfg.DefaultProfile = profile
	}
	if token := os.Getenv("CAREERPREP_ADMIN_TOKEN"); token != "" {
		cfg.Server.AdminToken = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	for field, value := range map[string]string{
		"cache.ttl":            c.Cache.TTL,
		"cache.sweep_interval": c.Cache.SweepInterval,
		"breaker.open_timeout": c.Breaker.OpenTimeout,
	} {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", field, value, err)
		}
	}

	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}

	return nil
}

// Save writes the configuration to the file it was loaded from
func Save(cfg *Config) error {
	configPath := cfg.path
	if configPath == "" {
		configPath = getConfigPath()
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the config file path in use
func (c *Config) Path() string {
	if c.path == "" {
		return getConfigPath()
	}
	return c.path
}

// GetActiveProfile returns the active profile based on flags, env vars, and config
func (c *Config) GetActiveProfile() (*Profile, error) {
	var profileName string

	// Priority: CLI flag > env var > config default
	if viper.IsSet("profile") && viper.GetString("profile") != "" {
		profileName = viper.GetString("profile")
	} else if c.DefaultProfile != "" {
		profileName = c.DefaultProfile
	} else {
		return nil, fmt.Errorf("no profile specified and no default profile set")
	}

	profile, ok := c.Profiles[profileName]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", profileName)
	}

	profile.Name = profileName
	return &profile, nil
}

// AddProfile adds or updates a profile
func (c *Config) AddProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	profile.Name = name
	c.Profiles[name] = profile
}

// GetContextWindow returns the context window for a profile, defaulting to 8192
func (p *Profile) GetContextWindow() int {
	if p.ContextWindow > 0 {
		return p.ContextWindow
	}
	return 8192
}

// Option returns a string profile option, or "" when unset
func (p *Profile) Option(name string) string {
	if v, ok := p.Options[name].(string); ok {
		return v
	}
	return ""
}

// CacheTTL returns the parsed cache TTL
func (c *Config) CacheTTL() time.Duration {
	d, _ := parseDuration(c.Cache.TTL)
	return d
}

// SweepInterval returns the parsed sweep interval; zero disables sweeping
func (c *Config) SweepInterval() time.Duration {
	d, _ := parseDuration(c.Cache.SweepInterval)
	return d
}

// BreakerOpenTimeout returns how long an open breaker stays open
func (c *Config) BreakerOpenTimeout() time.Duration {
	d, _ := parseDuration(c.Breaker.OpenTimeout)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// LoadEnv loads a .env file from the working directory if present
func LoadEnv() {
	_ = godotenv.Load()
}

// GetAPIKey returns the API key for the given provider from the environment
func (c *Config) GetAPIKey(provider string) string {
	switch provider {
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}

	// Ollama doesn't need API key
	return ""
}

// GetOllamaHost returns the Ollama host URL
func GetOllamaHost() string {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		return host
	}
	return "http://localhost:11434"
}

// DatabaseDSN returns the configured DSN, defaulting to a SQLite file in
// the XDG data directory
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if dsn := os.Getenv("CAREERPREP_DATABASE_DSN"); dsn != "" {
		return dsn
	}

	dbPath, err := xdg.DataFile("careerprep/careerprep.db")
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "careerprep", "careerprep.db")
	}
	return dbPath
}

// getConfigPath returns the path to the config file
func getConfigPath() string {
	configPath, err := xdg.ConfigFile("careerprep/config.toml")
	if err != nil {
		// Fallback to home directory
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "careerprep", "config.toml")
	}
	return configPath
}
