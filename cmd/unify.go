package cmd

import (
	"fmt"
	"io"

	"github.com/cottand/extunify/backend"
	"github.com/cottand/extunify/compile"
	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/spf13/cobra"
)

func newUnifyCmd(opts *rootOpts) *cobra.Command {
	var label string
	c := &cobra.Command{
		Use:   "unify T1 T2 [T3...]",
		Short: "Print the unified type of the given types and the casts each operand needs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ts, err := opts.parseTypes(out, args)
			if err != nil {
				return err
			}
			mp, err := merge(out, opts.registry, label, ts)
			if err != nil {
				return err
			}
			success(out, mp.Type.String())
			for _, d := range mp.Casts {
				_, _ = fmt.Fprintf(out, "  operand %d: %s\n", d.Operand, d.String())
			}
			return nil
		},
	}
	c.Flags().StringVar(&label, "label", "ret", "label of the merge point")
	return c
}

func newLowerCmd(opts *rootOpts) *cobra.Command {
	var label, pkgName string
	c := &cobra.Command{
		Use:   "lower T1 T2 [T3...]",
		Short: "Print the Go code merging values of the given types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ts, err := opts.parseTypes(out, args)
			if err != nil {
				return err
			}
			src, err := lower(out, opts.registry, pkgName, label, func(u *compile.Unit) (*compile.MergePoint, error) {
				return u.Merge(label, ts...)
			})
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, src)
			return err
		},
	}
	c.Flags().StringVar(&label, "label", "ret", "label of the merge point, it must be a valid Go identifier")
	c.Flags().StringVarP(&pkgName, "package", "p", "lowered", "package of the generated code")
	return c
}

// merge unifies ts in a fresh unit, reporting typing errors to w
func merge(w io.Writer, r *types.Registry, label string, ts []types.Type) (*compile.MergePoint, error) {
	u := compile.NewUnit("cli", r)
	mp, err := u.Merge(label, ts...)
	if err != nil {
		return nil, fmt.Errorf("could not merge (this is a bug and not a typing error): %w", err)
	}
	if mp == nil {
		reportErrors(w, u)
		return nil, ErrFailed
	}
	return mp, nil
}

// lower runs mergeFn in a fresh unit and lowers the result to Go source of package pkgName
func lower(w io.Writer, r *types.Registry, pkgName, label string, mergeFn func(*compile.Unit) (*compile.MergePoint, error)) (string, error) {
	u := compile.NewUnit("cli", r)
	mp, err := mergeFn(u)
	if u.Errors().HasError() {
		reportErrors(w, u)
		return "", ErrFailed
	}
	if err != nil {
		return "", fmt.Errorf("could not merge '%s': %w", label, err)
	}
	if mp == nil {
		return "", fmt.Errorf("merge point '%s' was not recorded", label)
	}
	f, err := backend.NewLowerer(r).Lower(pkgName, u)
	if err != nil {
		return "", fmt.Errorf("could not lower: %w", err)
	}
	return backend.Source(f)
}

func reportErrors(w io.Writer, u *compile.Unit) {
	for _, compileErr := range u.Errors().Errors() {
		fail(w, typerr.FormatWithCode(compileErr))
	}
}
