// Package pipeline implements the HTML and Markdown stages around typesetting.
//
// This package handles document structure, never the math itself:
//   - Parsing a generated page, reading and replacing its <body>
//   - Injecting the typesetter's stylesheet into <head>
//   - Serializing the page back with a leading doctype
//   - Markdown to HTML conversion via Goldmark for previews, with math
//     spans shielded from Markdown parsing and ==highlight== support
//   - Adding user stylesheets to preview pages
//   - Rebasing relative links and media when a preview is written to
//     another directory
//
// Typesetting is handled separately by the root sitemath package using
// MathJax inside headless Chrome (go-rod).
package pipeline
