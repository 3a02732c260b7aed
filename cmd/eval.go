package cmd

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cottand/extunify/backend"
	"github.com/cottand/extunify/compile"
	"github.com/spf13/cobra"
	"github.com/traefik/yaegi/interp"
)

type evalOpts struct {
	types  []string
	values []string
	sel    int
	label  string
}

func newEvalCmd(opts *rootOpts) *cobra.Command {
	e := &evalOpts{}
	c := &cobra.Command{
		Use:   "eval -v <go expr> -v <go expr> [...] --select i",
		Short: "Merge Go values and print the one selected, cast to the unified type",
		Long: `Merge Go values and print the one selected, cast to the unified type.

Values are Go expressions evaluated next to the generated code, so they may use the
lowered struct types, like Extension_int64{Value: 3}. When no -t is given the type of
each value is inferred from the value itself, which only works for plain Go values.`,
		Example: `  extunify eval -t 'Extension(int64)' -v 'Extension_int64{Value: 3}' -t int64 -v 'int64(2)' --select 1
  extunify eval -v 'uint32(7)' -v 'float32(1.5)' --select 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, opts)
		},
	}
	c.Flags().StringArrayVarP(&e.types, "type", "t", nil, "type of each value, in order")
	c.Flags().StringArrayVarP(&e.values, "value", "v", nil, "Go expression of each value, in order")
	c.Flags().IntVarP(&e.sel, "select", "s", 0, "index of the value to return")
	c.Flags().StringVar(&e.label, "label", "ret", "label of the merge point, it must be a valid Go identifier")
	_ = c.MarkFlagRequired("value")
	return c
}

func (e *evalOpts) run(cmd *cobra.Command, opts *rootOpts) error {
	out := cmd.OutOrStdout()
	if len(e.types) != 0 && len(e.types) != len(e.values) {
		return fmt.Errorf("got %d types for %d values", len(e.types), len(e.values))
	}
	if e.sel < 0 || e.sel >= len(e.values) {
		return fmt.Errorf("cannot select value %d out of %d", e.sel, len(e.values))
	}

	mergeFn := func(u *compile.Unit) (*compile.MergePoint, error) {
		values, err := hostValues(e.values)
		if err != nil {
			return nil, err
		}
		return u.MergeValues(e.label, values...)
	}
	if len(e.types) != 0 {
		ts, err := opts.parseTypes(out, e.types)
		if err != nil {
			return err
		}
		mergeFn = func(u *compile.Unit) (*compile.MergePoint, error) {
			return u.Merge(e.label, ts...)
		}
	}

	src, err := lower(out, opts.registry, backend.EvalPackage, e.label, mergeFn)
	if err != nil {
		return err
	}
	call := "Merge_" + e.label + "(" + strconv.Itoa(e.sel) + ", " + strings.Join(e.values, ", ") + ")"
	v, stdout, err := backend.Eval(src, call)
	if stdout != "" {
		_, _ = fmt.Fprint(out, stdout)
	}
	if err != nil {
		return err
	}
	success(out, fmt.Sprintf("%s = %s", call, formatValue(v)))
	return nil
}

// hostValues evaluates each Go expression on its own
func hostValues(exprs []string) ([]any, error) {
	values := make([]any, len(exprs))
	for i, expr := range exprs {
		v, err := interp.New(interp.Options{}).Eval(expr)
		if err != nil {
			return nil, fmt.Errorf("could not evaluate value %d: %w", i, err)
		}
		if !v.IsValid() {
			return nil, fmt.Errorf("value %d (%s) has no value", i, expr)
		}
		values[i] = v.Interface()
	}
	return values, nil
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%+v", v.Interface())
}
