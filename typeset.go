package sitemath

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-sitemath/internal/fileutil"
	"github.com/alnah/go-sitemath/internal/process"
)

// typesetter abstracts the math engine to allow testing without a browser.
type typesetter interface {
	Typeset(ctx context.Context, body string) (*typesetResult, error)
	Close() error
}

// Compile-time interface check.
var _ typesetter = (*rodTypesetter)(nil)

// typesetResult is the engine output for one page body.
type typesetResult struct {
	Body       string // body inner HTML with math replaced
	Stylesheet string // <style> element the output depends on, may be empty
}

// rootElementID is the container the body markup is typeset in.
const rootElementID = "sitemath-root"

// loaderTemplate is the page MathJax boots in. The body to typeset is
// assigned through innerHTML later, so its scripts never run.
const loaderTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script>window.MathJax = %s;</script>
<script src="%s"></script>
</head>
<body><div id="` + rootElementID + `"></div></body>
</html>`

// typesetScript runs in the page: waits for MathJax, typesets the markup
// inside the root container, and returns the result with its stylesheet.
const typesetScript = `(body) => {
	if (!window.MathJax || !window.MathJax.startup || !window.MathJax.startup.promise) {
		return { error: "MathJax is not loaded" };
	}
	const root = document.getElementById("` + rootElementID + `");
	return window.MathJax.startup.promise
		.then(() => {
			root.innerHTML = body;
			return window.MathJax.typesetPromise([root]);
		})
		.then(() => {
			const sheet = document.getElementById("MJX-CHTML-styles") || document.getElementById("MJX-SVG-styles");
			return { body: root.innerHTML, css: sheet ? sheet.outerHTML : "" };
		})
		.catch((err) => ({ error: String(err && err.message ? err.message : err) }));
}`

// mathJaxConfig is serialized into window.MathJax before the bundle loads.
type mathJaxConfig struct {
	Loader  map[string]any `json:"loader,omitempty"`
	Startup map[string]any `json:"startup"`
	TeX     texConfig      `json:"tex"`
	SVG     map[string]any `json:"svg,omitempty"`
}

type texConfig struct {
	InlineMath          [][2]string `json:"inlineMath"`
	DisplayMath         [][2]string `json:"displayMath"`
	ProcessEscapes      bool        `json:"processEscapes"`
	ProcessEnvironments bool        `json:"processEnvironments"`
}

// buildLoaderPage returns the HTML of the page MathJax is started in.
func buildLoaderPage(cfg engineConfig) (string, error) {
	mj := mathJaxConfig{
		Startup: map[string]any{"typeset": false},
		TeX: texConfig{
			InlineMath:          cfg.delimiters.Inline,
			DisplayMath:         cfg.delimiters.Display,
			ProcessEscapes:      true,
			ProcessEnvironments: true,
		},
	}
	if cfg.format == FormatSVG {
		// Each SVG carries its own glyph paths so pages stay self-contained.
		mj.SVG = map[string]any{"fontCache": "local"}
	}

	data, err := json.Marshal(mj)
	if err != nil {
		return "", fmt.Errorf("encoding MathJax config: %w", err)
	}

	src, err := scriptURL(cfg.mathJaxURL, cfg.format)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(loaderTemplate, data, src), nil
}

// scriptURL resolves the MathJax bundle for the output format.
// A base ending in ".js" is used as-is; otherwise tex-<format>.js is
// appended. Local paths become file:// URLs.
func scriptURL(base, format string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidMathJaxURL)
	}

	src := base
	if !strings.HasSuffix(src, ".js") {
		if !strings.HasSuffix(src, "/") {
			src += "/"
		}
		src += "tex-" + strings.ToLower(format) + ".js"
	}

	if fileutil.IsURL(src) {
		return src, nil
	}
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMathJaxURL, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// rodTypesetter implements typesetter with MathJax in headless Chrome.
// Rod automatically downloads Chromium on first run if not found.
// One browser is shared; every call opens its own page, and the engine
// wraps it in a pagePool to cap how many are open at once.
type rodTypesetter struct {
	cfg engineConfig

	mu          sync.Mutex
	browser     *rod.Browser
	launcher    *launcher.Launcher
	loaderPath  string
	loaderClean func()
}

// newRodTypesetter creates a rodTypesetter; the browser starts lazily.
func newRodTypesetter(cfg engineConfig) *rodTypesetter {
	return &rodTypesetter{cfg: cfg}
}

// ensureBrowser lazily launches and connects to the browser and writes the
// loader page.
func (r *rodTypesetter) ensureBrowser() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return nil
	}

	page, err := buildLoaderPage(r.cfg)
	if err != nil {
		return err
	}
	path, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return fmt.Errorf("writing loader page: %w", err)
	}

	l := launcher.New().Headless(true)

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := r.cfg.browserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	r.launcher = l
	r.loaderPath = path
	r.loaderClean = cleanup
	return nil
}

// Typeset loads MathJax in a fresh page and typesets body.
func (r *rodTypesetter) Typeset(ctx context.Context, body string) (*typesetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	browser, loaderPath := r.browser, r.loaderPath
	r.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("%w: browser closed", ErrBrowserConnect)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(loaderPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Bound the page by the context deadline or the configured timeout
	timeout := r.cfg.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	obj, err := p.Eval(typesetScript, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrTypeset, err)
	}

	if msg := obj.Value.Get("error").Str(); msg != "" {
		if strings.Contains(msg, "not loaded") {
			return nil, fmt.Errorf("%w: %s", ErrEngineNotReady, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrTypeset, msg)
	}

	return &typesetResult{
		Body:       obj.Value.Get("body").Str(),
		Stylesheet: obj.Value.Get("css").Str(),
	}, nil
}

// Close releases the browser, its process group, and the loader page.
func (r *rodTypesetter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	if r.loaderClean != nil {
		r.loaderClean()
		r.loaderClean = nil
	}
	return err
}
