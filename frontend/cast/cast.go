// Package cast decides which operands of a merge point need an implicit conversion
// to the unified type, and describes that conversion for the lowering backend.
package cast

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/frontend/unify"
	"github.com/cottand/extunify/internal/log"
	"github.com/pkg/errors"
)

type Kind uint8

const (
	// Convert is a primitive widening conversion
	Convert Kind = iota + 1
	// Wrap converts a value to the inner type of a Parametric and constructs the wrapper around it
	Wrap
	// Rewrap unwraps a Parametric, converts its payload and wraps it again with the same tag
	Rewrap
	// Tuple converts a tuple element by element
	Tuple
)

func (k Kind) String() string {
	switch k {
	case Convert:
		return "convert"
	case Wrap:
		return "wrap"
	case Rewrap:
		return "rewrap"
	case Tuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Descriptor describes an implicit conversion of one operand from From to To.
// It never performs the conversion itself.
type Descriptor struct {
	// Operand is the position of the converted operand in the merge point
	Operand int
	From    types.Type
	To      types.Type
	Kind    Kind

	// Inner converts the payload of a Wrap or Rewrap. It is nil when the payload already has the right type.
	Inner *Descriptor
	// Elems converts the elements of a Tuple. A nil element already has the right type.
	Elems []*Descriptor
}

func (d *Descriptor) String() string {
	sb := strings.Builder{}
	d.writeTo(&sb)
	return sb.String()
}

func (d *Descriptor) writeTo(sb *strings.Builder) {
	_, _ = fmt.Fprintf(sb, "%s %s -> %s", d.Kind, d.From, d.To)
	switch {
	case d.Inner != nil:
		sb.WriteString(" [")
		d.Inner.writeTo(sb)
		sb.WriteString("]")
	case d.Kind == Tuple:
		sb.WriteString(" [")
		for i, elem := range d.Elems {
			if i > 0 {
				sb.WriteString("; ")
			}
			if elem == nil {
				sb.WriteString("_")
				continue
			}
			elem.writeTo(sb)
		}
		sb.WriteString("]")
	}
}

// Resolver is stateless and safe for concurrent use
type Resolver struct {
	logger *slog.Logger
}

func NewResolver() *Resolver {
	return &Resolver{logger: log.Section("cast")}
}

// WithLogger returns a copy of r that logs to logger
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve returns a Descriptor for every operand in originals whose type is not unified.
// Operands that already have the unified type need no cast.
//
// unified must be the result of unifying originals: anything else is a caller bug,
// reported as a typerr.NewInvariantViolation.
func (r *Resolver) Resolve(unified types.Type, originals []types.Type) ([]Descriptor, error) {
	if unified == nil {
		return nil, r.violation(nil, nil, "no unified type to cast to")
	}
	var casts []Descriptor
	for i, original := range originals {
		if original == nil {
			return nil, errors.Wrapf(r.violation(nil, unified, "operand has no type"), "operand %d", i)
		}
		if original.Equals(unified) {
			continue
		}
		d, err := r.Describe(i, original, unified)
		if err != nil {
			return nil, errors.Wrapf(err, "operand %d", i)
		}
		r.logger.Debug("cast needed", "operand", i, "cast", d.String())
		casts = append(casts, *d)
	}
	return casts, nil
}

// ResolveResult resolves the casts for a unification result.
// Resolving a failed result is an invariant violation.
func (r *Resolver) ResolveResult(res unify.Result, originals []types.Type) ([]Descriptor, error) {
	if !res.Ok() {
		left, right := res.Operands()
		return nil, r.violation(left, right, "unification failed, there is nothing to cast to")
	}
	return r.Resolve(res.Type(), originals)
}

// Describe builds the conversion of the value of operand from from to to.
// It returns nil when from and to are the same type.
func (r *Resolver) Describe(operand int, from, to types.Type) (*Descriptor, error) {
	if from.Equals(to) {
		return nil, nil
	}
	d := &Descriptor{Operand: operand, From: from, To: to}

	switch to := to.(type) {
	case *types.Parametric:
		inner := from
		d.Kind = Wrap
		if from, ok := from.(*types.Parametric); ok && from.Tag == to.Tag {
			inner = from.Inner
			d.Kind = Rewrap
		}
		innerCast, err := r.Describe(operand, inner, to.Inner)
		if err != nil {
			return nil, err
		}
		d.Inner = innerCast
		return d, nil

	case *types.Tuple:
		from, ok := from.(*types.Tuple)
		if !ok || len(from.Elems) != len(to.Elems) {
			return nil, r.violation(d.From, to, "tuple shapes differ")
		}
		d.Kind = Tuple
		d.Elems = make([]*Descriptor, len(to.Elems))
		for i := range to.Elems {
			elem, err := r.Describe(operand, from.Elems[i], to.Elems[i])
			if err != nil {
				return nil, err
			}
			d.Elems[i] = elem
		}
		return d, nil

	case *types.Primitive:
		from, ok := from.(*types.Primitive)
		if !ok {
			return nil, r.violation(d.From, to, "only primitives convert to primitives")
		}
		if !unify.Widens(from, to) {
			return nil, r.violation(from, to, "conversion would narrow")
		}
		d.Kind = Convert
		return d, nil
	}

	return nil, r.violation(from, to, "types are not unification-compatible")
}

func (r *Resolver) violation(from, to types.Type, reason string) error {
	err := typerr.NewInvariantViolation{Reason: reason}
	if from != nil && to != nil {
		err.From, err.To = from, to
	}
	r.logger.Error("cast invariant violated", "from", types.LogValue(from), "to", types.LogValue(to), "reason", reason)
	return errors.WithStack(typerr.New(err))
}
