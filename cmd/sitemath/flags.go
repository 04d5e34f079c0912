package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// errHelpShown reports that -h/--help printed usage and the command should stop.
var errHelpShown = errors.New("help shown")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds typesetting engine flags.
// Empty strings mean "not set", so lower-priority sources apply.
type engineFlags struct {
	timeout    string
	format     string
	mathJaxURL string
	browserBin string
	workers    int // 0 = not set
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common commonFlags
	engine engineFlags
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common commonFlags
	engine engineFlags
	output string
	title  string
	theme  string
	css    []string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addEngineFlags adds engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-page typesetting timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.format, "format", "", "output format: svg, chtml")
	fs.StringVar(&f.mathJaxURL, "mathjax-url", "", "MathJax base URL, directory, or script")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.IntVarP(&f.workers, "workers", "w", 0, "pages typeset at once (0 = auto)")
}

// buildRenderFlagSet creates the render FlagSet bound to f.
func buildRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	return fs
}

// buildPreviewFlagSet creates the preview FlagSet bound to f.
func buildPreviewFlagSet(f *previewFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each input)")
	fs.StringVar(&f.title, "title", "", "page title (\"\" = first heading)")
	fs.StringVar(&f.theme, "theme", "", "preview theme name, or none")
	fs.StringArrayVar(&f.css, "css", nil, "stylesheet to embed (repeatable)")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	return fs
}

func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f)
	rest, err := parseFlagSet(fs, args, w, printRenderUsage)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

func parsePreviewFlags(args []string, w io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := buildPreviewFlagSet(f)
	rest, err := parseFlagSet(fs, args, w, printPreviewUsage)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseFlagSet parses args quietly and maps pflag errors to sentinels.
// Usage goes to w only when help was requested.
func parseFlagSet(fs *flag.FlagSet, args []string, w io.Writer, usage func(io.Writer)) ([]string, error) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(w)
			return nil, errHelpShown
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	return fs.Args(), nil
}
