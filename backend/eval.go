package backend

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
)

// EvalPackage is the package name generated code must be lowered to in order to be evaluated
const EvalPackage = "main"

// Eval interprets src, which must belong to package EvalPackage, and then returns
// the result of evaluating expr in the scope of src, like `Merge_ret(1, Extension_int64{}, int64(2))`.
// Anything src or expr print is returned as stdout.
func Eval(src string, expr string) (v reflect.Value, stdout string, err error) {
	out := bytes.NewBuffer(nil)
	i := interp.New(interp.Options{Stdout: out, Stderr: out})

	defer func() {
		// a failed Merge_ panics on an unknown selector
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluation panicked: %v", r)
		}
	}()

	if _, err := i.Eval(src); err != nil {
		return reflect.Value{}, out.String(), fmt.Errorf("could not load generated source: %w", err)
	}
	v, err = i.Eval(expr)
	if err != nil {
		return reflect.Value{}, out.String(), fmt.Errorf("could not evaluate %s: %w", expr, err)
	}
	return v, out.String(), nil
}
