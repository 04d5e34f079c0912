package sitemath

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Output format constants.
const (
	FormatSVG   = "svg"
	FormatCHTML = "chtml"
)

// DefaultMathJaxURL points at the MathJax 3 component bundles.
// The format-specific file (tex-svg.js, tex-chtml.js) is appended.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/"

// Timeout bounds for a single typesetting call.
const (
	DefaultTimeout = 30 * time.Second
	MaxTimeout     = 10 * time.Minute
)

// Item identifies one file to transform: a directory and a file name in it.
type Item struct {
	Collection string
	Dir        string
	Name       string
}

// Path returns the file path of the item.
func (i Item) Path() string {
	return filepath.Join(i.Dir, i.Name)
}

// Collection is a named set of items sharing a directory.
type Collection struct {
	Name  string
	Dir   string
	Items []Item
}

// Len returns the number of items in the collection.
func (c Collection) Len() int {
	return len(c.Items)
}

// Result holds the outcome of a single job.
// A job counts as completed whether or not Err is set.
type Result struct {
	Item     Item
	Err      error
	Duration time.Duration
}

// Report summarizes a finished run.
type Report struct {
	Results    []Result
	Succeeded  int
	Failed     int
	Violations int
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Delimiters lists the TeX delimiter pairs recognized by the engine.
// Each pair is [open, close].
type Delimiters struct {
	Inline  [][2]string
	Display [][2]string
}

// DefaultDelimiters returns MathJax's stock TeX delimiters.
// Single dollars are opt-in: prose with prices would be typeset otherwise.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Inline:  [][2]string{{`\(`, `\)`}},
		Display: [][2]string{{`$$`, `$$`}, {`\[`, `\]`}},
	}
}

// Validate checks that no delimiter is empty.
func (d Delimiters) Validate() error {
	for _, pairs := range [][][2]string{d.Inline, d.Display} {
		for _, p := range pairs {
			if strings.TrimSpace(p[0]) == "" || strings.TrimSpace(p[1]) == "" {
				return fmt.Errorf("%w: %q", ErrInvalidDelimiter, p)
			}
		}
	}
	if len(d.Inline) == 0 && len(d.Display) == 0 {
		return fmt.Errorf("%w: no delimiters configured", ErrInvalidDelimiter)
	}
	return nil
}

// isValidFormat reports whether format names a supported MathJax output.
func isValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatSVG, FormatCHTML:
		return true
	}
	return false
}
