package pipeline

import (
	"context"
	"strings"
)

// StyleInjector adds user stylesheets to a rendered page.
type StyleInjector interface {
	InjectStyles(ctx context.Context, page string, sheets ...string) (string, error)
}

// StyleInjection inserts each stylesheet as its own <style> block.
type StyleInjection struct{}

// InjectStyles places the sheets at the end of <head> so they follow the
// MathJax stylesheet and can override it. Pages without a head get the
// blocks right after <body>, and bare fragments get them prepended.
// Empty sheets are skipped.
func (s *StyleInjection) InjectStyles(ctx context.Context, page string, sheets ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var blocks strings.Builder
	for _, sheet := range sheets {
		if strings.TrimSpace(sheet) == "" {
			continue
		}
		blocks.WriteString(`<style data-sitemath="user">`)
		blocks.WriteString(escapeStyleText(sheet))
		blocks.WriteString("</style>")
	}
	if blocks.Len() == 0 {
		return page, nil
	}
	return insertInHead(page, blocks.String()), nil
}

func insertInHead(page, markup string) string {
	lower := strings.ToLower(page)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return page[:idx] + markup + page[idx:]
	}

	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.IndexByte(page[idx:], '>'); end != -1 {
			pos := idx + end + 1
			return page[:pos] + markup + page[pos:]
		}
	}

	return markup + page
}

// escapeStyleText keeps a stylesheet from closing its <style> element early.
func escapeStyleText(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
