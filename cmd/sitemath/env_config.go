package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-sitemath/internal/config"
)

// envPrefix marks the variables read by sitemath.
const envPrefix = "SITEMATH_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // SITEMATH_CONFIG: config file name or path
	Timeout    string // SITEMATH_TIMEOUT: per-page typesetting timeout
	Format     string // SITEMATH_FORMAT: svg or chtml
	MathJaxURL string // SITEMATH_MATHJAX_URL: MathJax base URL or directory
	BrowserBin string // SITEMATH_BROWSER_BIN: Chrome/Chromium binary
	Theme      string // SITEMATH_THEME: preview theme name
	Workers    int    // SITEMATH_WORKERS: concurrent pages
}

// knownEnvVars lists valid SITEMATH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SITEMATH_CONFIG":      true,
	"SITEMATH_TIMEOUT":     true,
	"SITEMATH_FORMAT":      true,
	"SITEMATH_MATHJAX_URL": true,
	"SITEMATH_BROWSER_BIN": true,
	"SITEMATH_THEME":       true,
	"SITEMATH_WORKERS":     true,
	"SITEMATH_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: strings.TrimSpace(os.Getenv("SITEMATH_CONFIG")),
		Timeout:    strings.TrimSpace(os.Getenv("SITEMATH_TIMEOUT")),
		Format:     strings.TrimSpace(os.Getenv("SITEMATH_FORMAT")),
		MathJaxURL: strings.TrimSpace(os.Getenv("SITEMATH_MATHJAX_URL")),
		BrowserBin: strings.TrimSpace(os.Getenv("SITEMATH_BROWSER_BIN")),
		Theme:      strings.TrimSpace(os.Getenv("SITEMATH_THEME")),
	}

	// Non-numeric or non-positive values are ignored
	if workers := strings.TrimSpace(os.Getenv("SITEMATH_WORKERS")); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized SITEMATH_* variables.
// Helps catch typos like SITEMATH_TIMOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig copies set environment values over the file config.
// Together with mergeEngineFlags this gives: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout != "" {
		cfg.Engine.Timeout = env.Timeout
	}
	if env.Format != "" {
		cfg.Engine.Format = env.Format
	}
	if env.MathJaxURL != "" {
		cfg.Engine.MathJaxURL = env.MathJaxURL
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.Theme != "" {
		cfg.Preview.Theme = env.Theme
	}
	if env.Workers > 0 {
		cfg.Engine.Workers = env.Workers
	}
}
