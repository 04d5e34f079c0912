package assets

import (
	"fmt"
	"strings"
)

// ValidateThemeName rejects empty names and names with separators or dots.
func ValidateThemeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidThemeName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidThemeName, name)
	}
	return nil
}
