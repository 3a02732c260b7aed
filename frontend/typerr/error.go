package typerr

import (
	"fmt"
	"log/slog"
	"slices"
)

// Errors collects the diagnostics of a single compilation unit.
// A nil *Errors is a valid, empty collection.
type Errors struct {
	errs []CompileError
}

// With records diagnostics, in the order the front end hit them. It returns the
// collection to use from then on, which is a new one when r is nil.
func (r *Errors) With(err ...CompileError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

// Merge appends the diagnostics of other, like those of several units lowered together.
// other is never modified by later calls on the result.
func (r *Errors) Merge(other *Errors) *Errors {
	if other == nil || len(other.errs) == 0 {
		return r
	}
	return r.With(slices.Clone(other.errs)...)
}

func (r *Errors) Errors() []CompileError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// LogValue renders every diagnostic with its code, as e0, e1...
func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
