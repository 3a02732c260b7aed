// Package unify computes the common type of the operands of a control-flow merge point.
//
// Parametric types take part in unification as if they were their inner type, but
// the wrapper is kept in the result:
//
//	{Extension(int64), int64}    -> Extension(int64)
//	{Extension(uint32), float32} -> Extension(float64)
//
// Non-parametric pairs are delegated to the promotion lattice (see Promote).
package unify

import (
	"log/slog"

	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/internal/log"
)

// Engine is stateless and safe for concurrent use
type Engine struct {
	logger *slog.Logger
}

func NewEngine() *Engine {
	return &Engine{logger: log.Section("unify")}
}

// WithLogger returns a copy of e that logs to logger
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Unify returns the most specific type both a and b convert to, or a Failed result naming a and b.
// It never partially unifies.
func (e *Engine) Unify(a, b types.Type) Result {
	if a == nil || b == nil {
		return Failed(a, b)
	}
	unified, ok := e.unify(a, b)
	if !ok {
		e.logger.Debug("unification failed", "left", types.LogValue(a), "right", types.LogValue(b))
		return Failed(a, b)
	}
	e.logger.Debug("unified", "left", types.LogValue(a), "right", types.LogValue(b), "result", types.LogValue(unified))
	return Unified(unified)
}

// UnifyAll folds Unify over ts from left to right.
// A failed result names the accumulated type and the first operand it could not be unified with.
func (e *Engine) UnifyAll(ts ...types.Type) Result {
	if len(ts) == 0 {
		return Failed(nil, nil)
	}
	if ts[0] == nil {
		return Failed(nil, nil)
	}
	acc := Unified(ts[0])
	for _, t := range ts[1:] {
		acc = e.Unify(acc.Type(), t)
		if !acc.Ok() {
			return acc
		}
	}
	return acc
}

func (e *Engine) unify(a, b types.Type) (types.Type, bool) {
	if a.Equals(b) {
		return a, true
	}
	pa, aIsParam := a.(*types.Parametric)
	pb, bIsParam := b.(*types.Parametric)

	switch {
	case aIsParam && bIsParam && pa.Tag == pb.Tag:
		return e.rewrap(pa.Tag, pa.Inner, pb.Inner)

	case aIsParam && bIsParam:
		// the deeper operand is unwrapped first so its layers are kept, at equal depth
		// the smaller tag ends up outermost
		if da, db := pa.Depth(), pb.Depth(); db > da || (db == da && pb.Tag < pa.Tag) {
			return e.rewrap(pb.Tag, a, pb.Inner)
		}
		return e.rewrap(pa.Tag, pa.Inner, b)

	case aIsParam:
		return e.rewrap(pa.Tag, pa.Inner, b)

	case bIsParam:
		return e.rewrap(pb.Tag, a, pb.Inner)
	}

	return e.promote(a, b)
}

func (e *Engine) rewrap(tag string, a, b types.Type) (types.Type, bool) {
	inner, ok := e.unify(a, b)
	if !ok {
		return nil, false
	}
	return &types.Parametric{Tag: tag, Inner: inner}, true
}

// promote unifies two non-parametric types
func (e *Engine) promote(a, b types.Type) (types.Type, bool) {
	switch a := a.(type) {
	case *types.Primitive:
		if b, ok := b.(*types.Primitive); ok {
			if p, ok := Promote(a, b); ok {
				return p, true
			}
		}
	case *types.Tuple:
		b, ok := b.(*types.Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return nil, false
		}
		elems := make([]types.Type, len(a.Elems))
		for i := range a.Elems {
			elem, ok := e.unify(a.Elems[i], b.Elems[i])
			if !ok {
				return nil, false
			}
			elems[i] = elem
		}
		return types.NewTuple(elems...), true
	}
	// opaque types only unify with themselves, which was checked already
	return nil, false
}
