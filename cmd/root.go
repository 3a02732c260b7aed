// Package cmd holds the extunify command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/internal/config"
	"github.com/cottand/extunify/internal/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// ErrFailed is returned by commands which already reported why they failed
var ErrFailed = errors.New("failed")

type rootOpts struct {
	configPath string
	logLevel   int
	registry   *types.Registry
}

func NewRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:   "extunify [subcommand]",
		Short: "unify the types of control-flow merge points, extension types included",
		Args:  cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "registry declaration file (YAML), the built-in one if empty")
	root.PersistentFlags().IntVarP(&opts.logLevel, "log-level", "l", int(slog.LevelError), "log level")

	root.AddCommand(
		newUnifyCmd(opts),
		newLowerCmd(opts),
		newEvalCmd(opts),
		newRegistryCmd(opts),
	)
	return root
}

func (o *rootOpts) load() error {
	log.SetLevel(slog.Level(o.logLevel))
	typerr.SetDebugPrinting(slog.Level(o.logLevel) <= slog.LevelDebug)

	decl := config.Default()
	if o.configPath != "" {
		var err error
		if decl, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	r, err := decl.Registry()
	if err != nil {
		return fmt.Errorf("invalid registry declaration: %w", err)
	}
	o.registry = r
	return nil
}

// parseTypes parses every type expression, printing the offending part of the first bad one
func (o *rootOpts) parseTypes(w io.Writer, exprs []string) ([]types.Type, error) {
	ts := make([]types.Type, len(exprs))
	for i, expr := range exprs {
		t, err := o.registry.Parse(expr)
		if err != nil {
			var compileErr typerr.CompileError
			if errors.As(err, &compileErr) {
				fail(w, typerr.FormatWithSource(compileErr, expr))
				return nil, ErrFailed
			}
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

const (
	green = "\033[32m"
	red   = "\033[31m"
	reset = "\033[39m"
)

// colour wraps s in an ANSI colour when w is a terminal that accepts them
func colour(w io.Writer, code, s string) string {
	f, ok := w.(*os.File)
	if !ok {
		return s
	}
	if _, noColour := os.LookupEnv("NO_COLOR"); noColour {
		return s
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return s
	}
	return code + s + reset
}

func success(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", colour(w, green, "SUCCESS"), msg)
}

func fail(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", colour(w, red, "FAIL"), msg)
}
