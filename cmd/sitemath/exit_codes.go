package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-sitemath"
	"github.com/alnah/go-sitemath/internal/assets"
	"github.com/alnah/go-sitemath/internal/config"
)

// Exit codes for the sitemath CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every page rendered
	ExitGeneral = 1 // Unexpected error, or some pages failed
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Site directory missing, file not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Per-page failures were already listed; the run itself completed.
	if errors.Is(err, ErrRenderFailed) ||
		errors.Is(err, context.Canceled) {
		return ExitGeneral
	}

	// Browser errors (exit 4)
	if errors.Is(err, sitemath.ErrBrowserConnect) ||
		errors.Is(err, sitemath.ErrPageCreate) ||
		errors.Is(err, sitemath.ErrPageLoad) ||
		errors.Is(err, sitemath.ErrEngineNotReady) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, sitemath.ErrListDirectory) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadStylesheet) ||
		errors.Is(err, assets.ErrAssetRead) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, sitemath.ErrInvalidFormat) ||
		errors.Is(err, sitemath.ErrInvalidTimeout) ||
		errors.Is(err, sitemath.ErrInvalidMathJaxURL) ||
		errors.Is(err, sitemath.ErrInvalidDelimiter) ||
		errors.Is(err, sitemath.ErrInvalidWorkers) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrUnexpectedArgs) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, assets.ErrThemeNotFound) ||
		errors.Is(err, assets.ErrInvalidThemeName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}
