// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-sitemath/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the CI systems we know of.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ForBrowserConnect returns hints for Chrome launch failures.
// The sandbox hint appears only in CI or a container; the binary hint only
// when no binary was chosen through the flag or the environment.
func ForBrowserConnect() string {
	var hints []string

	inCI := false
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			inCI = true
			break
		}
	}

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("SITEMATH_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "use --browser-bin or SITEMATH_BROWSER_BIN to pick a Chrome binary")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the per-page timeout.
func ForTimeout() string {
	return format("for pages with many formulas, use --timeout flag")
}

// ForEngineNotReady returns hints when the MathJax bundle did not load.
func ForEngineNotReady(mathJaxURL string) string {
	if fileutil.IsURL(mathJaxURL) && !strings.HasPrefix(mathJaxURL, "file://") {
		return format("check network access to " + mathJaxURL + " or use --mathjax-url with a local copy")
	}
	return format("check that " + mathJaxURL + " contains the MathJax es5 bundles")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/sitemath/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/sitemath") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForSiteDirectory returns hints when the generated site is missing.
func ForSiteDirectory() string {
	return format("run the site generator first, then run sitemath from the project root")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
