package assets

import "errors"

// Resolver looks in a custom themes directory first and falls back to the
// built-in themes when a name is not found there.
type Resolver struct {
	custom   ThemeLoader // nil when no directory is configured
	embedded ThemeLoader
}

// NewResolver creates a Resolver. An empty dir uses built-in themes only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if dir != "" {
		fsLoader, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadTheme returns the custom theme when present, else the built-in one.
// Validation and read errors from the custom directory are not masked.
func (r *Resolver) LoadTheme(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTheme(name)
	}

	css, err := r.custom.LoadTheme(name)
	if err == nil {
		return css, nil
	}
	if !errors.Is(err, ErrThemeNotFound) {
		return "", err
	}
	return r.embedded.LoadTheme(name)
}

// HasCustomLoader reports whether a themes directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

var _ ThemeLoader = (*Resolver)(nil)
