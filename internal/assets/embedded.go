package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed themes/*.css
var themes embed.FS

// EmbeddedLoader loads the built-in themes.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTheme returns the CSS of a built-in theme.
func (e *EmbeddedLoader) LoadTheme(name string) (string, error) {
	if err := ValidateThemeName(name); err != nil {
		return "", err
	}

	content, err := themes.ReadFile("themes/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return string(content), nil
}

// Names lists the built-in themes in alphabetical order.
func (e *EmbeddedLoader) Names() []string {
	entries, err := fs.ReadDir(themes, "themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

var _ ThemeLoader = (*EmbeddedLoader)(nil)
