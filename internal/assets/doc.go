// Package assets provides the stylesheets applied to preview pages.
//
// # Loader Architecture
//
//	ThemeLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - themes compiled into the binary
//	    ├── FilesystemLoader  - themes from a directory on disk
//	    └── Resolver          - custom directory first, embedded as fallback
//
// A theme is a single CSS file named {name}.css. A custom directory may
// override a built-in theme by using the same name.
//
// # Security
//
// Theme names are validated so they cannot carry path components.
// FilesystemLoader resolves symlinks and keeps reads inside its directory.
package assets
