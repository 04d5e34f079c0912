package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-sitemath"
	"github.com/alnah/go-sitemath/internal/config"
	"github.com/alnah/go-sitemath/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	MathJax  mathJaxInfo `json:"mathjax"`
	Site     siteInfo    `json:"site"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Config   string      `json:"effective_config,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// mathJaxInfo describes where the MathJax bundle is loaded from.
type mathJaxInfo struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	Local  bool   `json:"local"`
	Found  bool   `json:"found"` // meaningful for local bundles only
}

// siteInfo reports which site directories exist under the root.
type siteInfo struct {
	Root    string   `json:"root"`
	Missing []string `json:"missing,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOutput bool
	var configName string
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")

	if _, err := parseFlagSet(fs, args, env.Stdout, printDoctorUsage); err != nil {
		if errors.Is(err, errHelpShown) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(env, configName)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment, configName string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg := checkConfig(result, configName, env.Stderr)
	checkChrome(result, cfg)
	checkMathJax(result, cfg)
	checkSite(result, env.Root)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig resolves the effective configuration the way render does.
// Falls back to defaults so the remaining checks still run.
func checkConfig(result *doctorResult, configName string, stderr io.Writer) *config.Config {
	cfg, err := resolveConfig(commonFlags{config: configName}, engineFlags{}, stderr)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return config.DefaultConfig()
	}
	if data, err := config.Marshal(cfg); err == nil {
		result.Config = strings.TrimSpace(string(data))
	}
	return cfg
}

// checkChrome detects Chrome/Chromium installation.
// The configured binary wins over ROD_BROWSER_BIN, as in the engine.
func checkChrome(result *doctorResult, cfg *config.Config) {
	chromePath := firstNonEmpty(cfg.Browser.Bin, result.Env.BrowserBin)

	if chromePath == "" {
		// Use rod's launcher to locate Chrome
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found. Chromium will be downloaded on first use; install Chrome or set SITEMATH_BROWSER_BIN to avoid it")
			return
		}
	}

	// Verify it exists
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	// Get version by running chrome --version
	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- path comes from the user's own environment
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox status: disabled if ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkMathJax verifies a local MathJax bundle exists.
// Remote bundles are only reported; fetching them is left to render.
func checkMathJax(result *doctorResult, cfg *config.Config) {
	info := mathJaxInfo{
		URL:    firstNonEmpty(cfg.Engine.MathJaxURL, sitemath.DefaultMathJaxURL),
		Format: strings.ToLower(firstNonEmpty(cfg.Engine.Format, sitemath.FormatSVG)),
	}

	path, local := localBundlePath(info.URL, info.Format)
	info.Local = local
	if local {
		info.Found = fileutil.FileExists(path)
		if !info.Found {
			result.Errors = append(result.Errors,
				fmt.Sprintf("MathJax bundle not found at %s", path))
		}
	}
	result.MathJax = info
}

// localBundlePath returns the script path for local MathJax sources.
func localBundlePath(url, format string) (string, bool) {
	if fileutil.IsURL(url) && !strings.HasPrefix(url, "file://") {
		return "", false
	}
	path := strings.TrimPrefix(url, "file://")
	if strings.HasSuffix(path, ".js") {
		return path, true
	}
	return filepath.Join(path, "tex-"+format+".js"), true
}

// checkSite looks for the site directories under root.
func checkSite(result *doctorResult, root string) {
	result.Site.Root = root
	for _, dir := range []string{sitemath.SiteDir, sitemath.PostsDir, sitemath.PagesDir, sitemath.ProjectsDir} {
		if !fileutil.DirExists(filepath.Join(root, dir)) {
			result.Site.Missing = append(result.Site.Missing, dir)
		}
	}
	if len(result.Site.Missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Site directories missing: %s (render needs them)", strings.Join(result.Site.Missing, ", ")))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer()

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Warn if container/CI without sandbox disabled
	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("SITEMATH_CONTAINER") == "1" {
		return true, "SITEMATH_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for the loader page is writable.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("doctor", "html")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "sitemath doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MathJax")
	fmt.Fprintf(w, "  [OK] Output: %s\n", r.MathJax.Format)
	switch {
	case !r.MathJax.Local:
		fmt.Fprintf(w, "  [OK] Source: %s (remote)\n", r.MathJax.URL)
	case r.MathJax.Found:
		fmt.Fprintf(w, "  [OK] Source: %s (local)\n", r.MathJax.URL)
	default:
		fmt.Fprintf(w, "  [ERROR] Source: %s (bundle missing)\n", r.MathJax.URL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Site")
	if len(r.Site.Missing) == 0 {
		fmt.Fprintf(w, "  [OK] Layout found under %s\n", r.Site.Root)
	} else {
		for _, dir := range r.Site.Missing {
			fmt.Fprintf(w, "  [WARN] Missing: %s\n", dir)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if r.Config != "" {
		fmt.Fprintln(w, "Effective configuration")
		for _, line := range strings.Split(r.Config, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
