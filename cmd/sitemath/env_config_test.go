package main

// Notes:
// - Tests use t.Setenv() which prevents t.Parallel().
// - resolveConfig is tested here because its priority order depends on the
//   environment: flags > env > config file > defaults.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-sitemath/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("SITEMATH_CONFIG", "/path/to/site.yaml")
	t.Setenv("SITEMATH_TIMEOUT", " 2m ")
	t.Setenv("SITEMATH_FORMAT", "chtml")
	t.Setenv("SITEMATH_MATHJAX_URL", "/opt/mathjax")
	t.Setenv("SITEMATH_BROWSER_BIN", "/usr/bin/chromium")
	t.Setenv("SITEMATH_THEME", "serif")
	t.Setenv("SITEMATH_WORKERS", " 3 ")

	cfg := loadEnvConfig()

	if cfg.ConfigPath != "/path/to/site.yaml" {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.Timeout != "2m" {
		t.Errorf("Timeout = %q, want trimmed 2m", cfg.Timeout)
	}
	if cfg.Format != "chtml" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.MathJaxURL != "/opt/mathjax" {
		t.Errorf("MathJaxURL = %q", cfg.MathJaxURL)
	}
	if cfg.BrowserBin != "/usr/bin/chromium" {
		t.Errorf("BrowserBin = %q", cfg.BrowserBin)
	}
	if cfg.Theme != "serif" {
		t.Errorf("Theme = %q", cfg.Theme)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	for _, value := range []string{"many", "0", "-2"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SITEMATH_WORKERS", value)

			if cfg := loadEnvConfig(); cfg.Workers != 0 {
				t.Errorf("Workers = %d, want 0 for %q", cfg.Workers, value)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("SITEMATH_TIMOUT", "30s")
	t.Setenv("SITEMATH_FORMAT", "svg")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "unknown environment variable SITEMATH_TIMOUT (typo?)") {
		t.Errorf("output = %q, want typo warning", buf.String())
	}
	if strings.Contains(buf.String(), "SITEMATH_FORMAT") {
		t.Errorf("known variable should not warn: %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env over file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("env overrides file values", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Engine:  config.EngineConfig{Format: "svg", Timeout: "10s"},
			Preview: config.PreviewConfig{Theme: "default"},
		}
		applyEnvConfig(&envConfig{Format: "chtml", Timeout: "1m", Theme: "dark", Workers: 2}, cfg)

		if cfg.Engine.Format != "chtml" || cfg.Engine.Timeout != "1m" || cfg.Engine.Workers != 2 {
			t.Errorf("Engine = %+v, want env values", cfg.Engine)
		}
		if cfg.Preview.Theme != "dark" {
			t.Errorf("Preview.Theme = %q, want dark", cfg.Preview.Theme)
		}
	})

	t.Run("unset env keeps file values", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Engine:  config.EngineConfig{MathJaxURL: "/opt/mathjax"},
			Browser: config.BrowserConfig{Bin: "/usr/bin/chrome"},
		}
		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Engine.MathJaxURL != "/opt/mathjax" || cfg.Browser.Bin != "/usr/bin/chrome" {
			t.Errorf("config = %+v, want file values kept", cfg)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveConfig - Priority order
// ---------------------------------------------------------------------------

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestResolveConfig_Priority(t *testing.T) {
	path := writeConfigFile(t, "engine:\n  format: svg\n  timeout: 10s\n  mathjaxURL: /from/file\n")
	t.Setenv("SITEMATH_CONFIG", path)
	t.Setenv("SITEMATH_TIMEOUT", "20s")
	t.Setenv("SITEMATH_FORMAT", "chtml")

	var stderr bytes.Buffer
	cfg, err := resolveConfig(commonFlags{}, engineFlags{format: "svg"}, &stderr)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	if cfg.Engine.MathJaxURL != "/from/file" {
		t.Errorf("MathJaxURL = %q, want file value", cfg.Engine.MathJaxURL)
	}
	if cfg.Engine.Timeout != "20s" {
		t.Errorf("Timeout = %q, want env value", cfg.Engine.Timeout)
	}
	if cfg.Engine.Format != "svg" {
		t.Errorf("Format = %q, want flag value", cfg.Engine.Format)
	}
}

func TestResolveConfig_FlagConfigWins(t *testing.T) {
	fromEnv := writeConfigFile(t, "engine:\n  format: chtml\n")
	fromFlag := writeConfigFile(t, "engine:\n  format: svg\n")
	t.Setenv("SITEMATH_CONFIG", fromEnv)

	cfg, err := resolveConfig(commonFlags{config: fromFlag}, engineFlags{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if cfg.Engine.Format != "svg" {
		t.Errorf("Format = %q, want value from --config file", cfg.Engine.Format)
	}
}

func TestResolveConfig_InvalidEnv(t *testing.T) {
	t.Setenv("SITEMATH_FORMAT", "mathml")

	_, err := resolveConfig(commonFlags{}, engineFlags{}, &bytes.Buffer{})
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("resolveConfig() error = %v, want ErrInvalidValue", err)
	}
}

func TestResolveConfig_NameNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := resolveConfig(commonFlags{config: "no-such-sitemath-config"}, engineFlags{}, &bytes.Buffer{})
	var notFound *configNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("resolveConfig() error = %v, want configNotFoundError", err)
	}
	if notFound.name != "no-such-sitemath-config" {
		t.Errorf("name = %q", notFound.name)
	}
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Error("error should still match ErrConfigNotFound")
	}
}
