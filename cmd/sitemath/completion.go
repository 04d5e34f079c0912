package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-sitemath/internal/assets"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --timeout
	Short  string   // -t (empty if none)
	Desc   string   // help text
	Bool   bool     // takes no value
	Values []string // enum values
	Glob   string   // file pattern, "dir" for directories
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Files string // glob for file arguments (empty if none)
}

// flagCompletionMeta maps flag names to completion hints.
// Names, types and descriptions come from the FlagSets.
var flagCompletionMeta = map[string]flagDef{
	"format":      {Values: []string{"svg", "chtml"}},
	"config":      {Glob: "*.yaml *.yml"},
	"browser-bin": {Glob: "*"},
	"output":      {Glob: "dir"},
	"css":         {Glob: "*.css"},
	"theme":       {Values: append(assets.ThemeNames(), assets.NoTheme)},
}

// extractFlagsFromFlagSet lists fs's flags enriched with flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagCompletionMeta[f.Name]
		fd.Long = f.Name
		fd.Short = f.Shorthand
		fd.Desc = f.Usage
		fd.Bool = f.Value.Type() == "bool"
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "render", Desc: "Typeset math in every page of the generated site", Flags: extractFlagsFromFlagSet(buildRenderFlagSet(&renderFlags{}))},
		{Name: "preview", Desc: "Render markdown with math to typeset HTML", Flags: extractFlagsFromFlagSet(buildPreviewFlagSet(&previewFlags{})), Files: "*.md *.markdown"},
		{Name: "doctor", Desc: "Check system configuration", Flags: []flagDef{{Long: "json", Desc: "output as JSON", Bool: true}}},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func commandNames(cmds []commandDef) string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return strings.Join(names, " ")
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for sitemath\n")
	b.WriteString("_sitemath_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 && \"$cur\" != -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("        return\n    fi\n\n")

	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Bool || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern = "-" + f.Short + "|" + pattern
			}
			switch {
			case len(f.Values) > 0:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W \"%s\" -- \"$cur\")); return ;;\n", pattern, strings.Join(f.Values, " "))
			case f.Glob == "dir":
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
			default:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", pattern)
			}
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
		}
		if len(words) == 0 && c.Files == "" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if c.Files != "" {
			b.WriteString("            if [[ \"$cur\" != -* ]]; then\n")
			b.WriteString("                COMPREPLY=($(compgen -f -X '!*.@(md|markdown)' -- \"$cur\"))\n")
			b.WriteString("                return\n            fi\n")
		}
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\")) ;;\n", strings.Join(words, " "))
	}
	b.WriteString("        completion) COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"$cur\")) ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _sitemath_completions sitemath\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef sitemath\n\n")
	b.WriteString("_sitemath() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 && c.Files == "" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "                '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), zshAction(f))
		}
		if c.Files != "" {
			b.WriteString("                '*:markdown file:_files -g \"*.(md|markdown)\"'\n")
		} else {
			b.WriteString("                '*::'\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("        completion) _values 'shell' bash zsh fish ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _sitemath sitemath\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshAction returns the value completion for a flag.
func zshAction(f flagDef) string {
	switch {
	case f.Bool:
		return ""
	case len(f.Values) > 0:
		return ":value:(" + strings.Join(f.Values, " ") + ")"
	case f.Glob == "dir":
		return ":directory:_directories"
	case f.Glob != "":
		return ":file:_files"
	}
	return ":value:"
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", "'\\''")
	s = strings.ReplaceAll(s, "[", "\\[")
	return strings.ReplaceAll(s, "]", "\\]")
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for sitemath\n")
	b.WriteString("function __fish_sitemath_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_sitemath_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c sitemath -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c sitemath -n __fish_sitemath_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		cond := "'__fish_sitemath_using_command " + c.Name + "'"
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c sitemath -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch {
			case len(f.Values) > 0:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case f.Glob == "dir":
				line += " -x -a '(__fish_complete_directories)'"
			case !f.Bool:
				line += " -r -F"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
		if c.Files != "" {
			fmt.Fprintf(&b, "complete -c sitemath -n %s -F\n", cond)
		}
	}
	b.WriteString("complete -c sitemath -n '__fish_sitemath_using_command completion' -a 'bash zsh fish'\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sitemath completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(sitemath completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(sitemath completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    sitemath completion fish > ~/.config/fish/completions/sitemath.fish")
}
