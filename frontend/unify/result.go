package unify

import (
	"fmt"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
)

// Result is the outcome of unifying two types: either Unified(T) or Failed.
// The zero value is a Failed result with no operands.
type Result struct {
	unified     types.Type
	left, right types.Type
}

func Unified(t types.Type) Result {
	return Result{unified: t}
}

// Failed records the two offending types so the caller can report them
func Failed(left, right types.Type) Result {
	return Result{left: left, right: right}
}

func (r Result) Ok() bool { return r.unified != nil }

// Type is the unified type, nil for a failed result
func (r Result) Type() types.Type { return r.unified }

// Operands are the two offending types of a failed result
func (r Result) Operands() (left, right types.Type) { return r.left, r.right }

// Equals compares the outcome of two results, ignoring which operands caused a failure
func (r Result) Equals(other Result) bool {
	return types.Equal(r.unified, other.unified)
}

// Err is nil for a successful result, and a typerr.NewUnificationFailed otherwise
func (r Result) Err() error {
	if r.Ok() {
		return nil
	}
	return typerr.New(typerr.NewUnificationFailed{First: stringer(r.left), Second: stringer(r.right)})
}

func (r Result) String() string {
	if r.Ok() {
		return fmt.Sprintf("Unified(%s)", r.unified)
	}
	return fmt.Sprintf("Failed(%v, %v)", stringer(r.left), stringer(r.right))
}

// stringer avoids storing typed nil pointers inside a fmt.Stringer
func stringer(t types.Type) fmt.Stringer {
	if t == nil {
		return nilType{}
	}
	return t
}

type nilType struct{}

func (nilType) String() string { return "<nil>" }
