package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// Goldmark passes them through unchanged (no WithUnsafe needed), and
// ConvertMarkPlaceholders turns them into <mark> tags after conversion.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	highlightPattern   = regexp.MustCompile(`==([^=\n](?:[^\n]*?[^=\n])?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor turns ==text== into highlight markers and
// compresses runs of blank lines. Fenced code and code spans are copied
// verbatim. Line endings must already be normalized.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies the transformations outside code.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, seg := range splitFences(content) {
		if seg.code {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(compressBlankLines(highlightOutsideCodeSpans(seg.text)))
	}
	return b.String()
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to one.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// highlightOutsideCodeSpans converts ==text== between code spans.
func highlightOutsideCodeSpans(text string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '`' {
			continue
		}
		end := codeSpanEnd(text, i)
		b.WriteString(convertHighlights(text[start:i]))
		b.WriteString(text[i:end])
		start = end
		i = end - 1
	}
	b.WriteString(convertHighlights(text[start:]))
	return b.String()
}

// convertHighlights transforms ==text== on a single line to placeholder markers.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.NewReplacer(
		MarkStartPlaceholder, "<mark>",
		MarkEndPlaceholder, "</mark>",
	).Replace(content)
}
