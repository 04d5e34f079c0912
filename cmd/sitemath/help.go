package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sitemath [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Typeset math in the generated site (default)")
	fmt.Fprintln(w, "  preview     Render markdown with math to typeset HTML")
	fmt.Fprintln(w, "  doctor      Check system configuration")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'sitemath help <command>' for details on a specific command.")
}

// printEngineFlags prints the flags shared by render and preview.
func printEngineFlags(w io.Writer) {
	fmt.Fprintln(w, "Typesetting:")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-page timeout (default: 30s)")
	fmt.Fprintln(w, "      --format <fmt>        Output format: svg, chtml (default: svg)")
	fmt.Fprintln(w, "      --mathjax-url <url>   MathJax base URL, local directory, or script")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary (default: auto-detect)")
	fmt.Fprintln(w, "  -w, --workers <n>         Pages typeset at once (0 = auto, max 8)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sitemath [render] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typeset TeX math in the generated site, rewriting each page in place.")
	fmt.Fprintln(w, "Run from the project root. Pages are read from:")
	fmt.Fprintln(w, "  _site/index.html, _site/posts/, _site/blog/, _site/projects/")
	fmt.Fprintln(w)
	printEngineFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SITEMATH_CONFIG, SITEMATH_TIMEOUT, SITEMATH_FORMAT,")
	fmt.Fprintln(w, "  SITEMATH_MATHJAX_URL, SITEMATH_BROWSER_BIN, SITEMATH_THEME,")
	fmt.Fprintln(w, "  SITEMATH_WORKERS")
	fmt.Fprintln(w, "  (also read from .env)")
	fmt.Fprintln(w, "  Priority: flags > environment > config file > defaults")
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sitemath preview <file.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown files with math to standalone typeset HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each input)")
	fmt.Fprintln(w, "      --title <text>        Page title (default: first heading)")
	fmt.Fprintln(w, "      --theme <name>        Preview theme: default, serif, dark, none")
	fmt.Fprintln(w, "      --css <file>          Embed a stylesheet after the theme (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Relative image and link paths are rebased when --output differs")
	fmt.Fprintln(w, "from the input directory.")
	fmt.Fprintln(w)
	printEngineFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sitemath doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, sandbox, temp directory, and the effective configuration.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: sitemath version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: sitemath help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
