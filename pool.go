package sitemath

import (
	"context"
	"runtime"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one page typesets at a time.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent MathJax pages to bound Chrome memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// Compile-time interface check.
var _ typesetter = (*pagePool)(nil)

// pagePool bounds how many pages are typeset at once.
// Jobs are launched immediately and wait here for a slot, so the per-page
// timeout only starts once a page is actually opened.
type pagePool struct {
	inner typesetter
	sem   chan struct{}
}

// newPagePool wraps inner with room for size concurrent pages.
func newPagePool(inner typesetter, size int) *pagePool {
	if size < MinPoolSize {
		size = MinPoolSize
	}
	return &pagePool{
		inner: inner,
		sem:   make(chan struct{}, size),
	}
}

// Typeset waits for a free slot, then typesets body.
// Returns the context error if ctx ends while waiting.
func (p *pagePool) Typeset(ctx context.Context, body string) (*typesetResult, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	return p.inner.Typeset(ctx, body)
}

// Close closes the wrapped typesetter.
func (p *pagePool) Close() error {
	return p.inner.Close()
}

// Size returns the pool capacity.
func (p *pagePool) Size() int {
	return cap(p.sem)
}

// ResolvePoolSize determines how many pages typeset concurrently.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
