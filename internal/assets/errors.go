package assets

import "errors"

// Sentinel errors for theme loading.
var (
	ErrThemeNotFound    = errors.New("theme not found")
	ErrInvalidThemeName = errors.New("invalid theme name")
	ErrInvalidBasePath  = errors.New("invalid themes directory")
	ErrAssetRead        = errors.New("failed to read theme")
	ErrPathTraversal    = errors.New("path traversal detected")
)
