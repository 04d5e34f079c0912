// Package sitemath typesets the TeX math of a generated static site in place.
//
// # Quick Start
//
// Create an engine, run it over the site, and close when done:
//
//	engine, err := sitemath.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	report, err := sitemath.Run(ctx, ".", engine, os.Stderr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range report.Failures() {
//	    fmt.Println(f.Item.Path(), f.Err)
//	}
//
// # Site Layout
//
// The layout is fixed: the home page _site/index.html, then every file in
// _site/posts, _site/blog and _site/projects. Each directory is listed once
// before any page is touched.
//
// # Completion
//
// A Coordinator launches one job per page and counts the pages not yet
// finished. Every job reports through its own callback exactly once, on
// success and on failure. When the count reaches zero the Done channel is
// closed and Wait returns a Report. A callback fired twice is recorded as a
// violation and does not count again:
//
//	coord := sitemath.NewCoordinator(collections, sitemath.WithProgress(os.Stderr))
//	if err := coord.Launch(ctx, sitemath.NewFileTransformer(engine)); err != nil {
//	    return err
//	}
//	report, err := coord.Wait(ctx)
//
// # Typesetting
//
// The engine runs MathJax 3 inside headless Chrome (go-rod). Pages whose body
// holds no delimited math are rewritten without touching the browser. The
// output replaces the page body, and the stylesheet MathJax produces is
// added to <head>:
//
//	engine, err := sitemath.NewEngine(
//	    sitemath.WithFormat(sitemath.FormatCHTML),
//	    sitemath.WithTimeout(time.Minute),
//	    sitemath.WithMathJaxURL("/opt/mathjax/es5"),
//	)
//
// Engine.Preview converts a Markdown document to a standalone typeset page.
//
// # Error Handling
//
// Errors wrap package sentinels and can be tested with errors.Is:
//
//	if errors.Is(err, sitemath.ErrBrowserConnect) {
//	    // Chrome could not start
//	}
package sitemath
