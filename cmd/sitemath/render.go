package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alnah/go-sitemath"
	"github.com/alnah/go-sitemath/internal/config"
)

// runRender typesets every page of the site under env.Root in place.
// Pages that fail are listed after all jobs have completed.
func runRender(ctx context.Context, args []string, env *Environment) (err error) {
	flags, rest, err := parseRenderFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %v (render works on the site in the current directory)", ErrUnexpectedArgs, rest)
	}

	engine, cfg, err := openEngine(flags.common, flags.engine, env)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing engine: %w", closeErr))
		}
	}()

	var progress io.Writer
	if !flags.common.quiet {
		progress = env.Stderr
	}

	start := env.Now()
	report, err := sitemath.Run(ctx, env.Root, engine, progress)
	if report == nil {
		return err
	}

	failed := printReport(report, flags.common, env, env.Now().Sub(start))
	if failed > 0 {
		fmt.Fprint(env.Stderr, failureHint(report, cfg))
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d page(s)", ErrRenderFailed, failed, len(report.Results))
	}
	return nil
}

// printReport writes failures to stderr and, when verbose, per-page timing
// and a summary. Returns the number of failed pages.
func printReport(report *sitemath.Report, flags commonFlags, env *Environment, elapsed time.Duration) int {
	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.Item.Path(), r.Err)
			continue
		}
		if flags.verbose && !flags.quiet {
			fmt.Fprintf(env.Stdout, "%s (%v)\n", r.Item.Path(), r.Duration.Round(time.Millisecond))
		}
	}

	if flags.verbose && !flags.quiet {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed in %v\n",
			report.Succeeded, report.Failed, elapsed.Round(time.Millisecond))
	}
	return report.Failed
}

// failureHint returns one hint for the first failure that has one.
func failureHint(report *sitemath.Report, cfg *config.Config) string {
	mathJaxURL := cfg.Engine.MathJaxURL
	if mathJaxURL == "" {
		mathJaxURL = sitemath.DefaultMathJaxURL
	}
	for _, r := range report.Failures() {
		if errors.Is(r.Err, sitemath.ErrEngineNotReady) {
			return hintEngineNotReady(mathJaxURL) + "\n"
		}
		if h := hintFor(r.Err); h != "" {
			return h + "\n"
		}
	}
	return ""
}
