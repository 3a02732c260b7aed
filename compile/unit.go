// Package compile is the entry point the front end uses while type-checking a single function.
package compile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cottand/extunify/frontend/cast"
	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/frontend/unify"
	"github.com/cottand/extunify/internal/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v2"
)

// MergePoint is a control-flow merge whose operands were unified successfully
type MergePoint struct {
	Label    string
	Operands []types.Type
	// Type is the unified type of all Operands
	Type  types.Type
	Casts []cast.Descriptor
}

// CastFor returns the cast of operand i, or nil if operand i already has the unified type
func (m *MergePoint) CastFor(i int) *cast.Descriptor {
	for j := range m.Casts {
		if m.Casts[j].Operand == i {
			return &m.Casts[j]
		}
	}
	return nil
}

// Unit holds the state of the type-checking of one function.
// It is not safe for concurrent use, but several Units may share a Registry.
type Unit struct {
	ID   uuid.UUID
	name string

	registry *types.Registry
	engine   *unify.Engine
	resolver *cast.Resolver

	merges []*MergePoint
	labels *set.Set[string]

	// errors are typing problems a malformed program could cause
	errors *typerr.Errors
	// failures are internal defects: once one is recorded the unit is aborted
	failures []error

	logger *slog.Logger
}

type Option func(*Unit)

// WithLogger makes the unit and its engine and resolver log to logger
func WithLogger(logger *slog.Logger) Option {
	return func(u *Unit) {
		u.logger = logger
	}
}

func NewUnit(name string, registry *types.Registry, opts ...Option) *Unit {
	u := &Unit{
		ID:       uuid.New(),
		name:     name,
		registry: registry,
		labels:   set.New[string](0),
		logger:   log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With("unit", u.ID.String(), "function", name)
	u.engine = unify.NewEngine().WithLogger(u.logger.With("section", "unify"))
	u.resolver = cast.NewResolver().WithLogger(u.logger.With("section", "cast"))
	u.logger = u.logger.With("section", "compile")
	return u
}

func (u *Unit) Name() string              { return u.name }
func (u *Unit) Registry() *types.Registry { return u.registry }
func (u *Unit) Errors() *typerr.Errors    { return u.errors }
func (u *Unit) Failures() []error         { return u.failures }
func (u *Unit) Aborted() bool             { return len(u.failures) > 0 }
func (u *Unit) MergePoints() []*MergePoint {
	return u.merges
}

func (u *Unit) fail(err error) error {
	u.failures = append(u.failures, err)
	u.logger.Error("aborting compilation unit", "err", err)
	return err
}

// Merge unifies the operands of the merge point label and resolves their casts.
//
// When the operands have no common type a typerr.NewUnificationFailed is recorded in Errors
// and Merge returns (nil, nil). Internal defects abort the unit and are returned as errors.
func (u *Unit) Merge(label string, operands ...types.Type) (*MergePoint, error) {
	if u.Aborted() {
		return nil, fmt.Errorf("compilation unit %s was aborted: %w", u.name, u.failures[0])
	}
	if label == "" {
		return nil, u.fail(typerr.New(typerr.NewInvariantViolation{Reason: "merge point has no label"}))
	}
	if len(operands) == 0 {
		return nil, u.fail(typerr.New(typerr.NewInvariantViolation{Reason: fmt.Sprintf("merge point '%s' has no operands", label)}))
	}
	if u.labels.Contains(label) {
		return nil, u.fail(typerr.New(typerr.NewInvariantViolation{Reason: fmt.Sprintf("merge point '%s' was already merged", label)}))
	}

	res := u.engine.UnifyAll(operands...)
	if !res.Ok() {
		left, right := res.Operands()
		err := typerr.New(typerr.NewUnificationFailed{
			First:  left,
			Second: right,
			Label:  label,
		})
		u.errors = u.errors.With(err)
		u.logger.Debug("merge point does not type", "label", label, "err", err)
		return nil, nil
	}

	casts, err := u.resolver.ResolveResult(res, operands)
	if err != nil {
		return nil, u.fail(fmt.Errorf("resolving casts for '%s': %w", label, err))
	}
	mp := &MergePoint{
		Label:    label,
		Operands: operands,
		Type:     res.Type(),
		Casts:    casts,
	}
	u.merges = append(u.merges, mp)
	// labels of merges that failed typing stay free, the front end may retry them
	u.labels.Insert(label)
	u.logger.Debug("merged", "label", label, "type", types.LogValue(mp.Type), "casts", len(casts))
	return mp, nil
}

// MergeValues types each host value with the Registry before merging them.
// A value with no static type fails only this request.
func (u *Unit) MergeValues(label string, values ...any) (*MergePoint, error) {
	operands := make([]types.Type, len(values))
	for i, v := range values {
		t, err := u.registry.TypeOf(v)
		if err != nil {
			var compileErr typerr.CompileError
			if !errors.As(err, &compileErr) {
				compileErr = typerr.New(typerr.Unclassified{From: err})
			}
			u.errors = u.errors.With(compileErr)
			return nil, fmt.Errorf("typing operand %d of '%s': %w", i, label, err)
		}
		operands[i] = t
	}
	return u.Merge(label, operands...)
}
