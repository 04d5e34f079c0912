package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rebasedAttrs lists the attributes whose relative references follow the page
// when it is written to another directory.
var rebasedAttrs = map[atom.Atom][]string{
	atom.Img:    {"src"},
	atom.A:      {"href"},
	atom.Source: {"src"},
	atom.Video:  {"src", "poster"},
	atom.Audio:  {"src"},
}

// RebaseRelativePaths rewrites relative references in a page rendered from a
// file in fromDir so they still resolve once the page is saved in toDir.
// When the two directories match, or either is empty, the page is returned
// unchanged. References that cannot be expressed relative to toDir (another
// volume on Windows) become file:// URLs.
//
// URLs with a scheme or host, site-absolute paths, and fragment-only links
// are left alone. srcset and CSS url() values are not rewritten.
func RebaseRelativePaths(page, fromDir, toDir string) (string, error) {
	if fromDir == "" || toDir == "" {
		return page, nil
	}

	absFrom, err := filepath.Abs(fromDir)
	if err != nil {
		return "", err
	}
	absTo, err := filepath.Abs(toDir)
	if err != nil {
		return "", err
	}
	if absFrom == absTo {
		return page, nil
	}

	doc, isFragment, err := parseHTML(page)
	if err != nil {
		return "", err
	}

	rebaseNode(doc, absFrom, absTo)

	return renderHTML(doc, isFragment)
}

// parseHTML parses a full document or a body fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML serializes the tree. Fragments are rendered child by child so no
// <html><body> wrapper is added.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rebaseNode(n *html.Node, fromDir, toDir string) {
	if n.Type == html.ElementNode {
		for _, key := range rebasedAttrs[n.DataAtom] {
			rebaseAttr(n, key, fromDir, toDir)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rebaseNode(c, fromDir, toDir)
	}
}

func rebaseAttr(n *html.Node, key, fromDir, toDir string) {
	for i, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		if rebased, ok := rebaseRef(attr.Val, fromDir, toDir); ok {
			n.Attr[i].Val = rebased
		}
	}
}

// rebaseRef returns the reference rewritten for toDir, or false when it must
// be kept as is.
func rebaseRef(ref, fromDir, toDir string) (string, bool) {
	if !isRelativeRef(ref) {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	target := filepath.Join(fromDir, filepath.FromSlash(u.Path))

	rel, err := filepath.Rel(toDir, target)
	if err != nil {
		file := pathToFileURL(target)
		if u.RawQuery != "" {
			file += "?" + u.RawQuery
		}
		if u.Fragment != "" {
			file += "#" + u.EscapedFragment()
		}
		return file, true
	}

	u.Path = filepath.ToSlash(rel)
	u.RawPath = ""
	return u.String(), true
}

// isRelativeRef reports whether ref is a path relative to the page.
func isRelativeRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return false
	case strings.HasPrefix(ref, "#"), strings.HasPrefix(ref, "?"):
		return false
	case strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, `\`):
		return false
	case filepath.IsAbs(ref):
		return false
	}
	return true
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	path := filepath.ToSlash(absPath)
	if !strings.HasPrefix(path, "/") {
		// Windows drive paths need a leading slash in the URL path.
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
