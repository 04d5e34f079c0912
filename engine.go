package sitemath

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-sitemath/internal/pipeline"
)

// Compile-time interface checks.
var _ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)

// Option configures an Engine.
type Option func(*Engine)

// engineConfig holds internal configuration for Engine.
type engineConfig struct {
	timeout    time.Duration
	format     string
	mathJaxURL string
	delimiters Delimiters
	browserBin string
	workers    int // 0 = auto
}

// WithTimeout sets the per-page typesetting timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.cfg.timeout = d
	}
}

// WithFormat selects the MathJax output format (FormatSVG or FormatCHTML).
func WithFormat(format string) Option {
	return func(e *Engine) {
		e.cfg.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// WithMathJaxURL sets where the MathJax bundle is loaded from: a base URL,
// a local directory, or a direct path to a .js file.
func WithMathJaxURL(url string) Option {
	return func(e *Engine) {
		e.cfg.mathJaxURL = strings.TrimSpace(url)
	}
}

// WithDelimiters replaces the recognized TeX delimiters.
func WithDelimiters(d Delimiters) Option {
	return func(e *Engine) {
		e.cfg.delimiters = d
	}
}

// WithBrowserBin uses a pre-installed Chrome or Chromium binary.
func WithBrowserBin(path string) Option {
	return func(e *Engine) {
		e.cfg.browserBin = path
	}
}

// WithWorkers caps how many pages are typeset at once.
// Zero sizes the pool from the available CPUs.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.cfg.workers = n
	}
}

// withTypesetter injects the typesetter (tests).
func withTypesetter(t typesetter) Option {
	return func(e *Engine) {
		e.typesetter = t
	}
}

// Engine typesets the TeX math in HTML pages.
// Create with NewEngine, use Render for pages, and Close when done.
// Render is safe for concurrent use.
type Engine struct {
	cfg        engineConfig
	typesetter typesetter
	markdown   pipeline.HTMLConverter
}

// NewEngine creates an Engine with default configuration.
// Returns an error if an option holds an invalid value.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg: engineConfig{
			timeout:    DefaultTimeout,
			format:     FormatSVG,
			mathJaxURL: DefaultMathJaxURL,
			delimiters: DefaultDelimiters(),
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.validate(); err != nil {
		return nil, err
	}

	e.markdown = pipeline.NewGoldmarkConverter(e.cfg.pipelineDelimiters())

	// Create typesetter if not injected (e.g., by tests)
	if e.typesetter == nil {
		e.typesetter = newRodTypesetter(e.cfg)
	}
	e.typesetter = newPagePool(e.typesetter, ResolvePoolSize(e.cfg.workers))

	return e, nil
}

// validate checks option values.
func (c engineConfig) validate() error {
	if c.timeout <= 0 {
		return fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, c.timeout)
	}
	if c.timeout > MaxTimeout {
		return fmt.Errorf("%w: %s exceeds maximum %s", ErrInvalidTimeout, c.timeout, MaxTimeout)
	}
	if c.workers < 0 || c.workers > MaxPoolSize {
		return fmt.Errorf("%w: %d (must be 0 to %d)", ErrInvalidWorkers, c.workers, MaxPoolSize)
	}
	if !isValidFormat(c.format) {
		return fmt.Errorf("%w: %q (expected %s or %s)", ErrInvalidFormat, c.format, FormatSVG, FormatCHTML)
	}
	if _, err := scriptURL(c.mathJaxURL, c.format); err != nil {
		return err
	}
	return c.delimiters.Validate()
}

// pipelineDelimiters flattens inline and display pairs.
func (c engineConfig) pipelineDelimiters() []pipeline.Delimiter {
	var out []pipeline.Delimiter
	for _, pairs := range [][][2]string{c.delimiters.Display, c.delimiters.Inline} {
		for _, p := range pairs {
			out = append(out, pipeline.Delimiter{Open: p[0], Close: p[1]})
		}
	}
	return out
}

// Render typesets the math in an HTML page and returns the whole page,
// serialized with a leading doctype. Pages whose body holds no math are
// only normalized, the browser is not involved.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) Render(ctx context.Context, page []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := pipeline.ParseDocument(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseDocument, err)
	}

	if pipeline.ContainsMath(doc.BodyText(), e.cfg.pipelineDelimiters()) {
		body, err := doc.BodyHTML()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseDocument, err)
		}

		res, err := e.typesetter.Typeset(ctx, body)
		if err != nil {
			return nil, err
		}

		doc.SetBodyHTML(res.Body)
		doc.AppendHead(res.Stylesheet)
	}

	return doc.Render()
}

// Preview converts Markdown into a standalone page and typesets it.
// The title falls back to the first level-one heading.
func (e *Engine) Preview(ctx context.Context, markdown, title string) ([]byte, error) {
	fragment, err := e.markdown.ToHTML(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	if title == "" {
		title = pipeline.FirstHeading(markdown)
	}

	page, err := pipeline.WrapPage(title, fragment)
	if err != nil {
		return nil, err
	}
	return e.Render(ctx, []byte(page))
}

// Close releases resources (headless Chrome browser).
func (e *Engine) Close() error {
	if e.typesetter != nil {
		return e.typesetter.Close()
	}
	return nil
}
