package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-sitemath"
	"github.com/alnah/go-sitemath/internal/config"
	"github.com/alnah/go-sitemath/internal/fileutil"
)

// configNotFoundError keeps the config name so the hint can list the
// locations that were searched.
type configNotFoundError struct {
	name string
	err  error
}

func (e *configNotFoundError) Error() string { return e.err.Error() }
func (e *configNotFoundError) Unwrap() error { return e.err }

// resolveConfig builds the effective configuration from every source.
// The config file comes from --config, else SITEMATH_CONFIG, else none.
func resolveConfig(common commonFlags, engine engineFlags, stderr io.Writer) (*config.Config, error) {
	warnUnknownEnvVars(stderr)
	env := loadEnvConfig()

	cfg := config.DefaultConfig()
	if name := firstNonEmpty(common.config, env.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, &configNotFoundError{name: name, err: err}
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	mergeEngineFlags(engine, cfg)

	// Env and flags bypass LoadConfig, so validate the merged result.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeEngineFlags copies explicitly set flags over cfg.
func mergeEngineFlags(f engineFlags, cfg *config.Config) {
	if f.timeout != "" {
		cfg.Engine.Timeout = f.timeout
	}
	if f.format != "" {
		cfg.Engine.Format = f.format
	}
	if f.mathJaxURL != "" {
		cfg.Engine.MathJaxURL = f.mathJaxURL
	}
	if f.browserBin != "" {
		cfg.Browser.Bin = f.browserBin
	}
	if f.workers != 0 {
		cfg.Engine.Workers = f.workers
	}
}

// engineOptions translates cfg into engine options.
// Unset fields add no option, so the engine defaults apply.
func engineOptions(cfg *config.Config) ([]sitemath.Option, error) {
	var opts []sitemath.Option

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, sitemath.WithTimeout(timeout))
	}
	if cfg.Engine.Format != "" {
		opts = append(opts, sitemath.WithFormat(cfg.Engine.Format))
	}
	if cfg.Engine.MathJaxURL != "" {
		opts = append(opts, sitemath.WithMathJaxURL(cfg.Engine.MathJaxURL))
	}
	if cfg.Browser.Bin != "" {
		opts = append(opts, sitemath.WithBrowserBin(cfg.Browser.Bin))
	}
	if cfg.Engine.Workers > 0 {
		opts = append(opts, sitemath.WithWorkers(cfg.Engine.Workers))
	}

	inline, display := cfg.Engine.Delimiters.Inline, cfg.Engine.Delimiters.Display
	if len(inline) > 0 || len(display) > 0 {
		delims := sitemath.DefaultDelimiters()
		if len(inline) > 0 {
			delims.Inline = toPairs(inline)
		}
		if len(display) > 0 {
			delims.Display = toPairs(display)
		}
		opts = append(opts, sitemath.WithDelimiters(delims))
	}

	return opts, nil
}

// toPairs converts validated [open, close] lists.
func toPairs(lists [][]string) [][2]string {
	pairs := make([][2]string, 0, len(lists))
	for _, p := range lists {
		if len(p) != 2 {
			continue
		}
		pairs = append(pairs, [2]string{p[0], p[1]})
	}
	return pairs
}

// openEngine resolves configuration and starts an engine.
// The returned config is the effective one, used for hints.
func openEngine(common commonFlags, engine engineFlags, env *Environment) (Engine, *config.Config, error) {
	cfg, err := resolveConfig(common, engine, env.Stderr)
	if err != nil {
		return nil, nil, err
	}
	opts, err := engineOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	e, err := env.NewEngine(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating engine: %w", err)
	}
	return e, cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
