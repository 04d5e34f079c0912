package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-sitemath/internal/assets"
	"github.com/alnah/go-sitemath/internal/config"
	"github.com/alnah/go-sitemath/internal/fileutil"
	"github.com/alnah/go-sitemath/internal/pipeline"
)

// previewFile pairs a Markdown input with its HTML output.
type previewFile struct {
	input  string
	output string
}

// previewPost holds the steps applied to a typeset preview before writing.
type previewPost struct {
	styles pipeline.StyleInjector
	sheets []string
}

// runPreview renders Markdown files with math into standalone typeset HTML.
// Files are processed concurrently; the first error cancels the rest.
func runPreview(ctx context.Context, args []string, env *Environment) (err error) {
	flags, inputs, err := parsePreviewFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: preview needs at least one .md file", ErrNoInput)
	}

	files := make([]previewFile, 0, len(inputs))
	for _, in := range inputs {
		if !isMarkdownFile(in) {
			return fmt.Errorf("%w: %s is not a markdown file", ErrUnexpectedArgs, in)
		}
		files = append(files, previewFile{input: in, output: previewOutputPath(in, flags.output)})
	}
	if err := checkOutputConflicts(files); err != nil {
		return err
	}

	userSheets, err := readStylesheets(flags.css)
	if err != nil {
		return err
	}

	if flags.output != "" {
		if err := os.MkdirAll(flags.output, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
	}

	engine, cfg, err := openEngine(flags.common, flags.engine, env)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing engine: %w", closeErr))
		}
	}()

	theme, err := loadTheme(firstNonEmpty(flags.theme, cfg.Preview.Theme), cfg.Preview)
	if err != nil {
		return err
	}
	post := &previewPost{
		styles: &pipeline.StyleInjection{},
		sheets: append([]string{theme}, userSheets...),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			return previewOne(gctx, engine, post, f, flags.title)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !flags.common.quiet {
		for _, f := range files {
			fmt.Fprintf(env.Stdout, "Created %s\n", f.output)
		}
	}
	return nil
}

// checkOutputConflicts rejects inputs that would be written to the same
// file, such as a/x.md and b/x.md with -o.
func checkOutputConflicts(files []previewFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		key, err := filepath.Abs(f.output)
		if err != nil {
			key = filepath.Clean(f.output)
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, f.input, f.output)
		}
		seen[key] = f.input
	}
	return nil
}

// previewOne renders a single Markdown file.
func previewOne(ctx context.Context, engine Engine, post *previewPost, f previewFile, title string) error {
	content, err := os.ReadFile(f.input) // #nosec G304 -- input path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	out, err := engine.Preview(ctx, string(content), title)
	if err != nil {
		return fmt.Errorf("%s: %w", f.input, err)
	}

	page, err := post.apply(ctx, string(out), f)
	if err != nil {
		return fmt.Errorf("%s: %w", f.input, err)
	}

	if err := fileutil.ReplaceFile(f.output, []byte(page)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

// apply embeds the user stylesheets and rebases relative references when the
// output lands in another directory than its input.
func (p *previewPost) apply(ctx context.Context, page string, f previewFile) (string, error) {
	page, err := pipeline.RebaseRelativePaths(page, filepath.Dir(f.input), filepath.Dir(f.output))
	if err != nil {
		return "", fmt.Errorf("rebasing paths: %w", err)
	}
	return p.styles.InjectStyles(ctx, page, p.sheets...)
}

// loadTheme returns the CSS of the named preview theme. An empty name selects
// the default theme and "none" returns no CSS.
func loadTheme(name string, cfg config.PreviewConfig) (string, error) {
	if name == "" {
		name = assets.DefaultThemeName
	}
	if strings.EqualFold(name, assets.NoTheme) {
		return "", nil
	}

	resolver, err := assets.NewResolver(cfg.ThemesDir)
	if err != nil {
		return "", fmt.Errorf("preview.themesDir: %w", err)
	}
	css, err := resolver.LoadTheme(name)
	if err != nil {
		return "", fmt.Errorf("theme %q: %w", name, err)
	}
	return css, nil
}

// readStylesheets loads every --css file up front so a missing file fails
// before the browser starts.
func readStylesheets(paths []string) ([]string, error) {
	sheets := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- stylesheet path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadStylesheet, err)
		}
		sheets = append(sheets, string(data))
	}
	return sheets, nil
}

// previewOutputPath places the .html next to the input, or in outDir when set.
func previewOutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".html"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

// isMarkdownFile checks the extension case-insensitively.
func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
