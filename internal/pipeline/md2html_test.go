package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML - Markdown Conversion
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	delims := append(append([]Delimiter{}, dollarDelims...), latexDelims...)
	conv := NewGoldmarkConverter(delims)

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "heading and paragraph",
			input:        "# Title\n\nText",
			wantContains: []string{`<h1 id="title">Title</h1>`, "<p>Text</p>"},
		},
		{
			name:         "underscores in math are not emphasis",
			input:        "Let $a_1 * b_1$ and $c_2 * d_2$.",
			wantContains: []string{"$a_1 * b_1$", "$c_2 * d_2$"},
			wantExcludes: []string{"<em>"},
		},
		{
			name:         "latex brackets keep their backslashes",
			input:        `\[x^2\] and \(y\)`,
			wantContains: []string{`\[x^2\]`, `\(y\)`},
		},
		{
			name:         "math is HTML escaped",
			input:        "$a < b$",
			wantContains: []string{"$a &lt; b$"},
		},
		{
			name:         "display block across lines",
			input:        "$$\n\\sum_{i=1}^n i\n$$",
			wantContains: []string{"\\sum_{i=1}^n i"},
		},
		{
			name:         "align environment keeps its line breaks",
			input:        "\\begin{align}\na &= b \\\\\nc &= d\n\\end{align}",
			wantContains: []string{"\\begin{align}\na &amp;= b \\\\\nc &amp;= d\n\\end{align}"},
		},
		{
			name:         "code block is highlighted with classes",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
		},
		{
			name:         "GFM table",
			input:        "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "CRLF input is normalized",
			input:        "# A\r\n\r\nB",
			wantContains: []string{"<p>B</p>"},
			wantExcludes: []string{"\r"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output should contain %q, got %q", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q, got %q", exclude, got)
				}
			}
			if strings.Contains(got, MathStartPlaceholder) {
				t.Errorf("placeholder leaked into output: %q", got)
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter(nil).ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestWrapPage / TestFirstHeading - Standalone Pages
// ---------------------------------------------------------------------------

func TestWrapPage(t *testing.T) {
	t.Parallel()

	page, err := WrapPage("Notes <draft>", "<p>x</p>")
	if err != nil {
		t.Fatalf("WrapPage() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Notes &lt;draft&gt;</title>",
		".chroma",
		"<body>\n<p>x</p>\n</body>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page should contain %q", want)
		}
	}
}

func TestHighlightCSS(t *testing.T) {
	t.Parallel()

	css, err := HighlightCSS()
	if err != nil {
		t.Fatalf("HighlightCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("CSS should target .chroma classes, got %q", css)
	}
}

func TestFirstHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"first h1", "intro\n# Title\n# Other", "Title"},
		{"h2 is ignored", "## Sub\n", ""},
		{"hash without space", "#tag", ""},
		{"indented h1", "  # Spaced  ", "Spaced"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FirstHeading(tt.input); got != tt.want {
				t.Errorf("FirstHeading(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
