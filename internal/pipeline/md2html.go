package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates Markdown to HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HighlightStyle is the chroma style used for code blocks in previews.
const HighlightStyle = "github"

// pageTemplate wraps the rendered fragment in a complete HTML5 document.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
// Math spans are shielded from Markdown parsing and restored verbatim.
type GoldmarkConverter struct {
	md     goldmark.Markdown
	delims []Delimiter
	pre    MarkdownPreprocessor
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// syntax highlighting, protecting math written with the given delimiters.
func NewGoldmarkConverter(delims []Delimiter) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)
	return &GoldmarkConverter{md: md, delims: delims, pre: &CommonMarkPreprocessor{}}
}

// ToHTML converts Markdown content to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine
// and the caller returns early on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Math is protected before preprocessing so "==" inside TeX stays put.
	protected, spans := ProtectMath(normalizeLineEndings(content), c.delims)
	protected = c.pre.PreprocessMarkdown(ctx, protected)

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(protected), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(RestoreMath(buf.String(), spans))}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// WrapPage places a fragment into a standalone page with the code
// highlighting stylesheet in <head>.
func WrapPage(title, fragment string) (string, error) {
	css, err := HighlightCSS()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(pageTemplate, html.EscapeString(title), css, fragment), nil
}

// HighlightCSS returns the stylesheet for chroma's class-based output.
func HighlightCSS() (string, error) {
	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(HighlightStyle)); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}

// FirstHeading returns the text of the first ATX level-one heading, or "".
func FirstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
