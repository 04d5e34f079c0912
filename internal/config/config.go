package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName is the directory searched under the user config directory.
const AppName = "sitemath"

// Field length limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxFormatLength    = 10   // "svg", "chtml"
	MaxTimeoutLength   = 20   // "30s", "2m30s"
	MaxDelimiterLength = 10   // "$$", "\begin"
	MaxDelimiterPairs  = 16
	MaxThemeLength     = 64
	MaxWorkers         = 8 // Matches the engine's page pool cap
)

// Timeout bounds accepted in engine.timeout.
const (
	MinTimeout = time.Second
	MaxTimeout = 10 * time.Minute
)

// Config holds all configuration for typesetting.
// Site directories are fixed and intentionally absent.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Browser BrowserConfig `yaml:"browser"`
	Preview PreviewConfig `yaml:"preview"`
}

// EngineConfig defines MathJax options.
type EngineConfig struct {
	Format     string           `yaml:"format"`     // "svg" or "chtml" (empty = svg)
	MathJaxURL string           `yaml:"mathjaxURL"` // Base URL, directory, or .js file (empty = CDN)
	Timeout    string           `yaml:"timeout"`    // Per-page, Go duration (empty = 30s)
	Delimiters DelimitersConfig `yaml:"delimiters"`
	Workers    int              `yaml:"workers"` // Pages typeset at once (0 = auto)
}

// DelimitersConfig lists TeX delimiter pairs as [open, close].
// Empty lists keep the defaults.
type DelimitersConfig struct {
	Inline  [][]string `yaml:"inline"`
	Display [][]string `yaml:"display"`
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Bin string `yaml:"bin"` // Path to Chrome/Chromium (empty = auto-detect or download)
}

// PreviewConfig defines how Markdown previews are styled.
type PreviewConfig struct {
	Theme     string `yaml:"theme"`     // Theme name, "none" to disable (empty = default)
	ThemesDir string `yaml:"themesDir"` // Directory of {name}.css files checked before built-ins
}

// TimeoutDuration returns the parsed engine timeout, or 0 when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Engine.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: engine.timeout: %v", ErrInvalidValue, err)
	}
	return d, nil
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("engine.format", c.Engine.Format, MaxFormatLength); err != nil {
		return err
	}
	if c.Engine.Format != "" {
		switch strings.ToLower(c.Engine.Format) {
		case "svg", "chtml":
			// valid
		default:
			return fmt.Errorf("%w: engine.format %q (must be svg or chtml)", ErrInvalidValue, c.Engine.Format)
		}
	}

	if err := validateFieldLength("engine.mathjaxURL", c.Engine.MathJaxURL, MaxURLLength); err != nil {
		return err
	}

	if err := validateFieldLength("engine.timeout", c.Engine.Timeout, MaxTimeoutLength); err != nil {
		return err
	}
	d, err := c.TimeoutDuration()
	if err != nil {
		return err
	}
	if c.Engine.Timeout != "" && (d < MinTimeout || d > MaxTimeout) {
		return fmt.Errorf("%w: engine.timeout must be between %s and %s, got %s", ErrInvalidValue, MinTimeout, MaxTimeout, d)
	}

	if c.Engine.Workers < 0 || c.Engine.Workers > MaxWorkers {
		return fmt.Errorf("%w: engine.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Engine.Workers)
	}

	if err := validatePairs("engine.delimiters.inline", c.Engine.Delimiters.Inline); err != nil {
		return err
	}
	if err := validatePairs("engine.delimiters.display", c.Engine.Delimiters.Display); err != nil {
		return err
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("preview.theme", c.Preview.Theme, MaxThemeLength); err != nil {
		return err
	}
	return validateFieldLength("preview.themesDir", c.Preview.ThemesDir, MaxPathLength)
}

// validatePairs checks that every delimiter entry is a non-empty [open, close].
func validatePairs(field string, pairs [][]string) error {
	if len(pairs) > MaxDelimiterPairs {
		return fmt.Errorf("%w: %s has %d pairs (max %d)", ErrInvalidValue, field, len(pairs), MaxDelimiterPairs)
	}
	for i, p := range pairs {
		name := fmt.Sprintf("%s[%d]", field, i)
		if len(p) != 2 {
			return fmt.Errorf("%w: %s must be [open, close], got %d items", ErrInvalidValue, name, len(p))
		}
		for _, s := range p {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: %s has an empty delimiter", ErrInvalidValue, name)
			}
			if err := validateFieldLength(name, s, MaxDelimiterLength); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with every field unset, so the
// engine defaults apply.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// current directory first, then ~/.config/sitemath/, each with .yaml then .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
