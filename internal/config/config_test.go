package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to name inside a fresh temp directory.
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Engine.Format != "" {
		t.Errorf("Engine.Format = %q, want empty", cfg.Engine.Format)
	}
	if cfg.Engine.MathJaxURL != "" {
		t.Errorf("Engine.MathJaxURL = %q, want empty", cfg.Engine.MathJaxURL)
	}
	if cfg.Browser.Bin != "" {
		t.Errorf("Browser.Bin = %q, want empty", cfg.Browser.Bin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit returns error", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if err != nil && !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error %q should name the field", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Field Values
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "svg format is valid",
			cfg:  Config{Engine: EngineConfig{Format: "svg"}},
		},
		{
			name: "chtml format is valid in any case",
			cfg:  Config{Engine: EngineConfig{Format: "CHTML"}},
		},
		{
			name:    "unknown format",
			cfg:     Config{Engine: EngineConfig{Format: "mml"}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "timeout within bounds",
			cfg:  Config{Engine: EngineConfig{Timeout: "2m"}},
		},
		{
			name:    "unparsable timeout",
			cfg:     Config{Engine: EngineConfig{Timeout: "soon"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout below minimum",
			cfg:     Config{Engine: EngineConfig{Timeout: "10ms"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout above maximum",
			cfg:     Config{Engine: EngineConfig{Timeout: "11m"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout string too long",
			cfg:     Config{Engine: EngineConfig{Timeout: strings.Repeat("1", MaxTimeoutLength+1) + "s"}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "mathjax URL too long",
			cfg:     Config{Engine: EngineConfig{MathJaxURL: "https://" + strings.Repeat("a", MaxURLLength)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name: "valid delimiter pairs",
			cfg: Config{Engine: EngineConfig{Delimiters: DelimitersConfig{
				Inline:  [][]string{{"$", "$"}, {`\(`, `\)`}},
				Display: [][]string{{"$$", "$$"}},
			}}},
		},
		{
			name: "delimiter pair with one item",
			cfg: Config{Engine: EngineConfig{Delimiters: DelimitersConfig{
				Inline: [][]string{{"$"}},
			}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "blank delimiter",
			cfg: Config{Engine: EngineConfig{Delimiters: DelimitersConfig{
				Display: [][]string{{" ", "$$"}},
			}}},
			wantErr: ErrInvalidValue,
		},
		{
			name: "delimiter too long",
			cfg: Config{Engine: EngineConfig{Delimiters: DelimitersConfig{
				Display: [][]string{{strings.Repeat("$", MaxDelimiterLength+1), "$$"}},
			}}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "browser bin too long",
			cfg:     Config{Browser: BrowserConfig{Bin: strings.Repeat("a", MaxPathLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "theme name too long",
			cfg:     Config{Preview: PreviewConfig{Theme: strings.Repeat("t", MaxThemeLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "negative workers",
			cfg:     Config{Engine: EngineConfig{Workers: -1}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "workers above maximum",
			cfg:     Config{Engine: EngineConfig{Workers: MaxWorkers + 1}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "themes dir too long",
			cfg:     Config{Preview: PreviewConfig{ThemesDir: strings.Repeat("d", MaxPathLength+1)}},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_TooManyPairs(t *testing.T) {
	t.Parallel()

	pairs := make([][]string, MaxDelimiterPairs+1)
	for i := range pairs {
		pairs[i] = []string{"$", "$"}
	}
	cfg := Config{Engine: EngineConfig{Delimiters: DelimitersConfig{Inline: pairs}}}

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Validate() error = %v, want ErrInvalidValue", err)
	}
}

func TestConfig_TimeoutDuration(t *testing.T) {
	t.Parallel()

	t.Run("unset returns zero", func(t *testing.T) {
		t.Parallel()

		d, err := (&Config{}).TimeoutDuration()
		if err != nil || d != 0 {
			t.Errorf("TimeoutDuration() = %v, %v, want 0, nil", d, err)
		}
	})

	t.Run("parses duration", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{Engine: EngineConfig{Timeout: "1m30s"}}
		d, err := cfg.TimeoutDuration()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != 90*time.Second {
			t.Errorf("TimeoutDuration() = %v, want 1m30s", d)
		}
	})
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File Loading
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "site.yaml", `engine:
  format: chtml
  mathjaxURL: "/opt/mathjax/es5"
  timeout: 45s
  delimiters:
    inline:
      - ["$", "$"]
    display:
      - ["$$", "$$"]
browser:
  bin: /usr/bin/chromium
preview:
  theme: serif
  themesDir: ./themes
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Engine.Format != "chtml" {
			t.Errorf("Engine.Format = %q, want %q", cfg.Engine.Format, "chtml")
		}
		if cfg.Engine.MathJaxURL != "/opt/mathjax/es5" {
			t.Errorf("Engine.MathJaxURL = %q, want %q", cfg.Engine.MathJaxURL, "/opt/mathjax/es5")
		}
		if d, _ := cfg.TimeoutDuration(); d != 45*time.Second {
			t.Errorf("timeout = %v, want 45s", d)
		}
		if len(cfg.Engine.Delimiters.Inline) != 1 || cfg.Engine.Delimiters.Inline[0][0] != "$" {
			t.Errorf("Delimiters.Inline = %v, want [[$ $]]", cfg.Engine.Delimiters.Inline)
		}
		if cfg.Browser.Bin != "/usr/bin/chromium" {
			t.Errorf("Browser.Bin = %q, want %q", cfg.Browser.Bin, "/usr/bin/chromium")
		}
		if cfg.Preview.Theme != "serif" || cfg.Preview.ThemesDir != "./themes" {
			t.Errorf("Preview = %+v, want serif from ./themes", cfg.Preview)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "invalid.yaml", "engine: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "unknown.yaml", "engine:\n  format: svg\n  fontCache: global\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("site directories are not configurable", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "dirs.yaml", "site:\n  postsDir: content/posts\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("empty file returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "empty.yaml", "")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "bad.yaml", "engine:\n  format: png\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives os.UserConfigDir on Linux")
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "blog.yml"), []byte("engine:\n  format: svg\n"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadConfig("blog")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Engine.Format != "svg" {
		t.Errorf("Engine.Format = %q, want svg", cfg.Engine.Format)
	}

	_, err = LoadConfig("missing-config-name")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(AppName, "missing-config-name.yaml")) {
		t.Errorf("error %q should list the searched user path", err)
	}
}

func TestSearchPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives os.UserConfigDir on Linux")
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	got := SearchPaths("site")
	want := []string{
		"site.yaml",
		"site.yml",
		filepath.Join(home, AppName, "site.yaml"),
		filepath.Join(home, AppName, "site.yml"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("SearchPaths() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Input Limits
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		var cfg Config
		if err := unmarshalStrict(nil, &cfg); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("error = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("input over limit", func(t *testing.T) {
		t.Parallel()

		var cfg Config
		data := make([]byte, MaxInputSize+1)
		if err := unmarshalStrict(data, &cfg); !errors.Is(err, ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := Marshal(&Config{Engine: EngineConfig{Format: "chtml"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "format: chtml") {
		t.Errorf("Marshal() = %q, want it to contain %q", out, "format: chtml")
	}
}
