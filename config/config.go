package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Metadata backends for the logo cache
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Catalog identifies one catalog of an addon
type Catalog struct {
	Type string `yaml:"type"`
	ID   string `yaml:"id"`
}

// Addon is a manifest-based content addon. With no catalogs configured,
// every catalog listed by the addon manifest is fetched.
type Addon struct {
	Name     string    `yaml:"name"`
	URL      string    `yaml:"url"`
	Catalogs []Catalog `yaml:"catalogs"`
}

// LogosConfig holds the logo enhancement settings
type LogosConfig struct {
	Enabled         bool          `yaml:"enabled"`
	CacheDir        string        `yaml:"cache_dir"`
	MetadataBackend string        `yaml:"metadata_backend"`
	TTL             time.Duration `yaml:"ttl"`
	BatchSize       int           `yaml:"batch_size"`
	BatchPause      time.Duration `yaml:"batch_pause"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	IndexURL        string        `yaml:"index_url"`
	IndexTimeout    time.Duration `yaml:"index_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	RateLimit       int           `yaml:"rate_limit"` // index requests per second
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN or ERROR
	Format string `yaml:"format"` // json or text
}

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	Log LogConfig `yaml:"log"`

	// Playlist output settings
	Playlist struct {
		OutputPath      string        `yaml:"output_path"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		PublicBaseURL   string        `yaml:"public_base_url"`
	} `yaml:"playlist"`

	// Content addons
	Addons []Addon `yaml:"addons"`

	Logos LogosConfig `yaml:"logos"`

	// Resilience settings (embedded)
	Resilience ResilienceConfig `yaml:"resilience"`
}

var logLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate HTTP settings
	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	// Validate logging
	if !logLevels[strings.ToUpper(c.Log.Level)] {
		errors = append(errors, "Log level must be one of: DEBUG, INFO, WARN, ERROR")
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		errors = append(errors, "Log format must be json or text")
	}

	// Validate playlist settings
	if c.Playlist.OutputPath == "" {
		errors = append(errors, "Playlist output path is required")
	}
	if c.Playlist.RefreshInterval <= 0 {
		errors = append(errors, "Playlist refresh interval must be positive")
	}

	// Validate addons
	if len(c.Addons) == 0 {
		errors = append(errors, "At least one addon is required")
	}
	for i, a := range c.Addons {
		if a.URL == "" {
			errors = append(errors, fmt.Sprintf("Addon %d (%s): URL is required", i, a.Name))
		}
		for j, cat := range a.Catalogs {
			if cat.Type == "" || cat.ID == "" {
				errors = append(errors, fmt.Sprintf("Addon %d (%s): catalog %d needs type and id", i, a.Name, j))
			}
		}
	}

	// Validate logo settings
	if c.Logos.CacheDir == "" {
		errors = append(errors, "Logo cache directory is required")
	}
	if c.Logos.MetadataBackend != BackendJSON && c.Logos.MetadataBackend != BackendBolt {
		errors = append(errors, "Logo metadata backend must be json or bolt")
	}
	if c.Logos.TTL <= 0 {
		errors = append(errors, "Logo TTL must be positive")
	}
	if c.Logos.BatchSize <= 0 {
		errors = append(errors, "Logo batch size must be positive")
	}
	if c.Logos.BatchPause < 0 {
		errors = append(errors, "Logo batch pause must not be negative")
	}
	if c.Logos.SweepInterval <= 0 {
		errors = append(errors, "Logo sweep interval must be positive")
	}
	if c.Logos.IndexURL == "" {
		errors = append(errors, "Logo index URL is required")
	}
	if c.Logos.IndexTimeout <= 0 {
		errors = append(errors, "Logo index timeout must be positive")
	}
	if c.Logos.DownloadTimeout <= 0 {
		errors = append(errors, "Logo download timeout must be positive")
	}
	if c.Logos.RateLimit <= 0 {
		errors = append(errors, "Logo rate limit must be positive")
	}

	// Validate resilience config
	if err := c.Resilience.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("Resilience config: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// HTTP defaults
	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	// Logging defaults
	cfg.Log.Level = "INFO"
	cfg.Log.Format = "json"

	// Playlist defaults
	cfg.Playlist.OutputPath = "data/playlist.m3u"
	cfg.Playlist.RefreshInterval = 6 * time.Hour

	// Logo defaults
	cfg.Logos.Enabled = true
	cfg.Logos.CacheDir = "data/logos"
	cfg.Logos.MetadataBackend = BackendJSON
	cfg.Logos.TTL = 30 * 24 * time.Hour
	cfg.Logos.BatchSize = 3
	cfg.Logos.BatchPause = time.Second
	cfg.Logos.SweepInterval = 24 * time.Hour
	cfg.Logos.IndexURL = "https://commons.wikimedia.org/w/api.php"
	cfg.Logos.IndexTimeout = 5 * time.Second
	cfg.Logos.DownloadTimeout = 10 * time.Second
	cfg.Logos.RateLimit = 5

	// Resilience defaults
	cfg.Resilience = *DefaultResilienceConfig()

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	// HTTP settings
	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)

	// Logging
	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, logLevels)
	p.parseString("LOG_FORMAT", &cfg.Log.Format)

	// Playlist settings
	p.parseString("PLAYLIST_OUTPUT_PATH", &cfg.Playlist.OutputPath)
	p.parseDuration("PLAYLIST_REFRESH_INTERVAL", &cfg.Playlist.RefreshInterval)
	p.parseString("PUBLIC_BASE_URL", &cfg.Playlist.PublicBaseURL)

	if val := os.Getenv("ADDON_URLS"); val != "" {
		cfg.Addons = nil
		for _, u := range strings.Split(val, ",") {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			cfg.Addons = append(cfg.Addons, Addon{
				Name: fmt.Sprintf("addon-%d", len(cfg.Addons)+1),
				URL:  u,
			})
		}
	}

	// Logo settings
	p.parseBool("LOGOS_ENABLED", &cfg.Logos.Enabled)
	if val := os.Getenv("LOGO_CACHE_DIR"); val != "" {
		absPath, err := validateCacheDir(val)
		if err != nil {
			p.errors = append(p.errors, fmt.Sprintf("LOGO_CACHE_DIR: %v", err))
		} else {
			cfg.Logos.CacheDir = absPath
		}
	}
	if val := os.Getenv("LOGO_METADATA_BACKEND"); val != "" {
		cfg.Logos.MetadataBackend = strings.ToLower(val)
	}
	p.parseDuration("LOGO_TTL", &cfg.Logos.TTL)
	p.parseInt("LOGO_BATCH_SIZE", &cfg.Logos.BatchSize)
	p.parseOptionalDuration("LOGO_BATCH_PAUSE", &cfg.Logos.BatchPause)
	p.parseDuration("LOGO_SWEEP_INTERVAL", &cfg.Logos.SweepInterval)
	p.parseString("LOGO_INDEX_URL", &cfg.Logos.IndexURL)
	p.parseInt("LOGO_RATE_LIMIT", &cfg.Logos.RateLimit)

	// Resilience settings
	cfg.Resilience.applyEnv(p)

	return p.err()
}

// validateCacheDir validates and normalizes the cache directory path
func validateCacheDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("cache directory cannot be empty")
	}

	// Ensure cache directory is an absolute path
	if !filepath.IsAbs(dir) {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path for cache dir: %w", err)
		}
		return absPath, nil
	}

	return dir, nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(l.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.ToLower(l.Format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LogAttrs returns the effective settings as slog key-value pairs
func (c *Config) LogAttrs() []any {
	return []any{
		"http_address", c.HTTP.Address,
		"http_port", c.HTTP.Port,
		"log_level", strings.ToUpper(c.Log.Level),
		"playlist_path", c.Playlist.OutputPath,
		"refresh_interval", c.Playlist.RefreshInterval,
		"public_base_url", c.Playlist.PublicBaseURL,
		"addons", len(c.Addons),
		"logos_enabled", c.Logos.Enabled,
		"logo_cache_dir", c.Logos.CacheDir,
		"logo_backend", c.Logos.MetadataBackend,
		"logo_ttl", c.Logos.TTL,
		"index_url", c.Logos.IndexURL,
	}
}
