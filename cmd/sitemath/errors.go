package main

import (
	"context"
	"errors"

	"github.com/alnah/go-sitemath"
	"github.com/alnah/go-sitemath/internal/config"
	"github.com/alnah/go-sitemath/internal/hints"
)

// CLI errors.
var (
	ErrInvalidFlag    = errors.New("invalid flag")
	ErrUnexpectedArgs = errors.New("unexpected arguments")
	ErrNoInput        = errors.New("no input files")
	ErrReadMarkdown   = errors.New("failed to read markdown")
	ErrReadStylesheet = errors.New("failed to read stylesheet")
	ErrWriteHTML      = errors.New("failed to write HTML")
	ErrOutputConflict = errors.New("inputs share an output file")
	ErrRenderFailed   = errors.New("some pages failed to render")
)

// hintFor returns an actionable hint suffix for err, or "".
func hintFor(err error) string {
	var configErr *configNotFoundError
	switch {
	case errors.As(err, &configErr):
		return hints.ForConfigNotFound(config.SearchPaths(configErr.name))
	case errors.Is(err, sitemath.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, sitemath.ErrListDirectory):
		return hints.ForSiteDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	}
	return ""
}

// hintEngineNotReady is split out because it needs the effective MathJax URL.
func hintEngineNotReady(mathJaxURL string) string {
	return hints.ForEngineNotReady(mathJaxURL)
}
