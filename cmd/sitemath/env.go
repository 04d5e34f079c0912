package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-sitemath"
)

// Engine is the part of *sitemath.Engine the commands use.
type Engine interface {
	sitemath.DocumentRenderer
	Preview(ctx context.Context, markdown, title string) ([]byte, error)
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the site root, and engine construction.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Root      string // Directory holding the generated site
	NewEngine func(opts ...sitemath.Option) (Engine, error)
}

// DefaultEnv returns the production environment rooted at the working directory.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Root:      ".",
		NewEngine: newEngine,
	}
}

// newEngine builds a browser-backed engine.
func newEngine(opts ...sitemath.Option) (Engine, error) {
	e, err := sitemath.NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e, nil
}
