package assets

// DefaultThemeName is applied to previews unless another theme is chosen.
const DefaultThemeName = "default"

// NoTheme disables the preview theme.
const NoTheme = "none"

var defaultLoader = NewEmbeddedLoader()

// LoadTheme loads a built-in theme by name.
func LoadTheme(name string) (string, error) {
	return defaultLoader.LoadTheme(name)
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	return defaultLoader.Names()
}
