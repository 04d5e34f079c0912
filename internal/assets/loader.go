package assets

// ThemeLoader loads a preview stylesheet by name, without the .css extension.
// Implementations return ErrThemeNotFound for unknown names and
// ErrInvalidThemeName for names carrying path components.
type ThemeLoader interface {
	LoadTheme(name string) (string, error)
}
