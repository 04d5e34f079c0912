package pipeline

import (
	"html"
	"sort"
	"strconv"
	"strings"
)

// Math placeholders use Unicode Private Use Area characters, like the
// highlight markers. Goldmark passes them through untouched, so math
// survives Markdown parsing without emphasis or escape processing.
const (
	MathStartPlaceholder = "\uE002" // U+E002: after the highlight markers
	MathEndPlaceholder   = "\uE003" // U+E003
)

// Delimiter is an opening and closing TeX delimiter pair.
type Delimiter struct {
	Open  string
	Close string
}

// envBegin opens a TeX environment such as \begin{align}. MathJax
// typesets environments without delimiters around them.
const envBegin = `\begin{`

// ContainsMath reports whether text holds at least one complete delimited
// math span or TeX environment. Used to skip the engine for pages without math.
func ContainsMath(text string, delims []Delimiter) bool {
	for off := 0; ; {
		idx := strings.Index(text[off:], envBegin)
		if idx == -1 {
			break
		}
		if environmentSpan(text[off+idx:]) > 0 {
			return true
		}
		off += idx + len(envBegin)
	}

	for _, d := range delims {
		start := strings.Index(text, d.Open)
		if start == -1 {
			continue
		}
		if strings.Contains(text[start+len(d.Open):], d.Close) {
			return true
		}
	}
	return false
}

// ProtectMath replaces each delimited math span and each TeX environment
// in Markdown with a placeholder and returns the spans in order. Code spans
// and fenced code blocks are left alone. A backslash before a
// single-character delimiter escapes it.
func ProtectMath(content string, delims []Delimiter) (string, []string) {
	if len(delims) == 0 && !strings.Contains(content, envBegin) {
		return content, nil
	}

	// Longest opener first so "$$" wins over "$".
	ordered := append([]Delimiter(nil), delims...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Open) > len(ordered[j].Open)
	})

	var (
		b     strings.Builder
		spans []string
	)
	b.Grow(len(content))

	for _, seg := range splitFences(content) {
		if seg.code {
			b.WriteString(seg.text)
			continue
		}
		spans = protectSegment(&b, seg.text, ordered, spans)
	}
	return b.String(), spans
}

// RestoreMath swaps placeholders back for their HTML-escaped math spans.
func RestoreMath(htmlContent string, spans []string) string {
	if len(spans) == 0 {
		return htmlContent
	}
	pairs := make([]string, 0, len(spans)*2)
	for i, span := range spans {
		pairs = append(pairs, placeholder(i), html.EscapeString(span))
	}
	return strings.NewReplacer(pairs...).Replace(htmlContent)
}

func placeholder(i int) string {
	return MathStartPlaceholder + strconv.Itoa(i) + MathEndPlaceholder
}

// protectSegment scans text outside fenced code, copying code spans verbatim.
func protectSegment(b *strings.Builder, text string, delims []Delimiter, spans []string) []string {
	i := 0
	for i < len(text) {
		if text[i] == '`' {
			end := codeSpanEnd(text, i)
			b.WriteString(text[i:end])
			i = end
			continue
		}

		if n := environmentSpan(text[i:]); n > 0 {
			b.WriteString(placeholder(len(spans)))
			spans = append(spans, text[i:i+n])
			i += n
			continue
		}

		if d, ok := matchOpen(text[i:], delims); ok {
			if closeIdx := strings.Index(text[i+len(d.Open):], d.Close); closeIdx > 0 {
				end := i + len(d.Open) + closeIdx + len(d.Close)
				b.WriteString(placeholder(len(spans)))
				spans = append(spans, text[i:end])
				i = end
				continue
			}
		}

		if text[i] == '\\' && i+1 < len(text) && isEscapable(text[i+1], delims) {
			b.WriteString(text[i : i+2])
			i += 2
			continue
		}

		b.WriteByte(text[i])
		i++
	}
	return spans
}

// environmentSpan returns the length of the \begin{name}...\end{name}
// block starting s, or 0 when s does not start a closed environment.
func environmentSpan(s string) int {
	if !strings.HasPrefix(s, envBegin) {
		return 0
	}
	rest := s[len(envBegin):]
	nameEnd := strings.IndexByte(rest, '}')
	if nameEnd <= 0 || !isEnvironmentName(rest[:nameEnd]) {
		return 0
	}
	closer := `\end{` + rest[:nameEnd] + `}`
	head := len(envBegin) + nameEnd + 1
	idx := strings.Index(s[head:], closer)
	if idx == -1 {
		return 0
	}
	return head + idx + len(closer)
}

// isEnvironmentName accepts letters with an optional trailing star (align*).
func isEnvironmentName(name string) bool {
	name = strings.TrimSuffix(name, "*")
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// matchOpen returns the first delimiter whose opener starts s.
func matchOpen(s string, delims []Delimiter) (Delimiter, bool) {
	for _, d := range delims {
		if d.Open != "" && d.Close != "" && strings.HasPrefix(s, d.Open) {
			return d, true
		}
	}
	return Delimiter{}, false
}

// isEscapable reports whether c starts a delimiter, so "\$" stays literal.
func isEscapable(c byte, delims []Delimiter) bool {
	for _, d := range delims {
		if d.Open != "" && d.Open[0] == c {
			return true
		}
	}
	return false
}

// codeSpanEnd returns the index just past the code span starting at i.
// An unmatched backtick run is returned as-is.
func codeSpanEnd(text string, i int) int {
	run := 0
	for i+run < len(text) && text[i+run] == '`' {
		run++
	}
	fence := text[i : i+run]
	rest := text[i+run:]
	for off := 0; off < len(rest); {
		idx := strings.Index(rest[off:], fence)
		if idx == -1 {
			break
		}
		pos := off + idx
		after := pos + run
		if after < len(rest) && rest[after] == '`' {
			// Longer run; keep looking.
			for after < len(rest) && rest[after] == '`' {
				after++
			}
			off = after
			continue
		}
		return i + run + after
	}
	return i + run
}

type segment struct {
	text string
	code bool
}

// splitFences cuts Markdown into fenced code blocks and everything else.
// An unclosed fence runs to the end of the content.
func splitFences(content string) []segment {
	var (
		segs   []segment
		cur    strings.Builder
		inCode bool
		marker string
	)
	flush := func(code bool) {
		if cur.Len() > 0 {
			segs = append(segs, segment{text: cur.String(), code: code})
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		fence := fenceMarker(line)
		switch {
		case !inCode && fence != "":
			flush(false)
			inCode, marker = true, fence
			cur.WriteString(line)
		case inCode && fence != "" && strings.HasPrefix(fence, marker) && isClosingFence(line):
			cur.WriteString(line)
			flush(true)
			inCode, marker = false, ""
		default:
			cur.WriteString(line)
		}
	}
	flush(inCode)
	return segs
}

// fenceMarker returns the ``` or ~~~ run opening line, or "".
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}

// isClosingFence reports whether a fence line carries no info string.
func isClosingFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	c := trimmed[0]
	return strings.Trim(trimmed, string(c)) == ""
}
