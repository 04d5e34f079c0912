package assets

// Notes:
// - Built-in theme content is only checked for non-emptiness and a body rule;
//   exact CSS is not asserted.
// - Symlink escape is tested on Unix only (Windows needs privileges).

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestEmbeddedLoader - Built-in Themes
// ---------------------------------------------------------------------------

func TestEmbeddedLoader_LoadTheme(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()
	for _, name := range []string{"default", "serif", "dark"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			css, err := loader.LoadTheme(name)
			if err != nil {
				t.Fatalf("LoadTheme(%q) error = %v", name, err)
			}
			if !strings.Contains(css, "body {") {
				t.Errorf("theme %q should style body", name)
			}
		})
	}
}

func TestEmbeddedLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		theme   string
		wantErr error
	}{
		{"unknown theme", "neon", ErrThemeNotFound},
		{"empty name", "", ErrInvalidThemeName},
		{"path separator", "../default", ErrInvalidThemeName},
		{"extension", "default.css", ErrInvalidThemeName},
		{"backslash", `a\b`, ErrInvalidThemeName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewEmbeddedLoader().LoadTheme(tt.theme)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadTheme(%q) error = %v, want %v", tt.theme, err, tt.wantErr)
			}
		})
	}
}

func TestThemeNames(t *testing.T) {
	t.Parallel()

	want := []string{"dark", "default", "serif"}
	if got := ThemeNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ThemeNames() = %v, want %v", got, want)
	}
	if _, err := LoadTheme(DefaultThemeName); err != nil {
		t.Errorf("default theme should exist: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader - Custom Themes Directory
// ---------------------------------------------------------------------------

func writeTheme(t *testing.T, dir, name, css string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".css"), []byte(css), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "theme.css")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing directory", filepath.Join(t.TempDir(), "absent")},
		{"file instead of directory", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewFilesystemLoader(tt.path); !errors.Is(err, ErrInvalidBasePath) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", tt.path, err)
			}
		})
	}
}

func TestFilesystemLoader_LoadTheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTheme(t, dir, "blog", "body { color: navy; }")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	css, err := loader.LoadTheme("blog")
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	if css != "body { color: navy; }" {
		t.Errorf("LoadTheme() = %q", css)
	}

	if _, err := loader.LoadTheme("absent"); !errors.Is(err, ErrThemeNotFound) {
		t.Errorf("LoadTheme(absent) error = %v, want ErrThemeNotFound", err)
	}
	if _, err := loader.LoadTheme("../blog"); !errors.Is(err, ErrInvalidThemeName) {
		t.Errorf("LoadTheme(../blog) error = %v, want ErrInvalidThemeName", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	outside := t.TempDir()
	writeTheme(t, outside, "secret", "body{}")

	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(dir, "evil.css")); err != nil {
		t.Fatalf("setup: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadTheme("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadTheme(evil) error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolver - Custom First, Built-in Fallback
// ---------------------------------------------------------------------------

func TestResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTheme(t, dir, "default", "body { custom: yes; }")
	writeTheme(t, dir, "blog", "body { blog: yes; }")

	r, err := NewResolver(dir)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if !r.HasCustomLoader() {
		t.Error("HasCustomLoader() = false, want true")
	}

	tests := []struct {
		name    string
		theme   string
		want    string
		wantErr error
	}{
		{name: "custom overrides built-in", theme: "default", want: "body { custom: yes; }"},
		{name: "custom only", theme: "blog", want: "body { blog: yes; }"},
		{name: "falls back to built-in", theme: "serif", want: "Latin Modern"},
		{name: "unknown everywhere", theme: "neon", wantErr: ErrThemeNotFound},
		{name: "invalid name not masked", theme: "a/b", wantErr: ErrInvalidThemeName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := r.LoadTheme(tt.theme)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadTheme(%q) error = %v, want %v", tt.theme, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadTheme(%q) error = %v", tt.theme, err)
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("LoadTheme(%q) = %q, want it to contain %q", tt.theme, css, tt.want)
			}
		})
	}
}

func TestResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if r.HasCustomLoader() {
		t.Error("HasCustomLoader() = true, want false")
	}
	if _, err := r.LoadTheme("dark"); err != nil {
		t.Errorf("LoadTheme(dark) error = %v", err)
	}
}

func TestResolver_InvalidDirectory(t *testing.T) {
	t.Parallel()

	if _, err := NewResolver(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewResolver() error = %v, want ErrInvalidBasePath", err)
	}
}
