package typerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
var enableDebugErrorPrinting = false

// SetDebugPrinting makes FormatWithCode prefix errors with the frame that created them
func SetDebugPrinting(enabled bool) { enableDebugErrorPrinting = enabled }

type ErrCode int

const (
	None ErrCode = iota
	UnsupportedValue
	UnknownType
	InvalidTypeExpr
	UnificationFailed
	InvariantViolation
)

// Positioner allows finding the location of an error in the type expression it came from.
// Errors about types that did not come from source text carry an empty Range.
type Positioner interface {
	Pos() token.Pos
	End() token.Pos
}

type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

func (r Range) Pos() token.Pos { return r.PosStart }
func (r Range) End() token.Pos { return r.PosEnd }

// CompileError is an error the front end can present to the user
type CompileError interface {
	Error() string
	Code() ErrCode
	Positioner

	withStack([]byte) CompileError
	getStack() []byte
}

func FormatWithCode(e CompileError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		lines := strings.Split(string(e.getStack()), "\n")
		if len(lines) > 6 {
			return fmt.Sprintf("%s:(E%03d) %s", strings.TrimSpace(lines[6]), e.Code(), e.Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatWithSource renders e and, when e has a position, the offending part of src underlined.
// Positions are 1-based offsets into src, as produced by go/parser.ParseExpr.
func FormatWithSource(e CompileError, src string) string {
	msg := FormatWithCode(e)
	start, end := int(e.Pos())-1, int(e.End())-1
	if start < 0 || end <= start || end > len(src) {
		return msg
	}
	return fmt.Sprintf("%s\n  %s\n  %s%s", msg, src, strings.Repeat(" ", start), strings.Repeat("^", end-start))
}

func New[E CompileError](err E) CompileError {
	return err.withStack(debug.Stack())
}

// Unclassified carries an error that is not a CompileError, so it can still be reported
// next to the diagnostics of its unit
type Unclassified struct {
	From error
	Range
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}

type NewUnsupportedValue struct {
	Range
	// GoType is the dynamic Go type of the value, as printed by %T
	GoType string
	stack  []byte
}

func (e NewUnsupportedValue) Error() string {
	return fmt.Sprintf("no static type is registered for values of Go type '%s'", e.GoType)
}
func (e NewUnsupportedValue) Code() ErrCode    { return UnsupportedValue }
func (e NewUnsupportedValue) getStack() []byte { return e.stack }
func (e NewUnsupportedValue) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}

type NewUnknownType struct {
	Range
	Name  string
	stack []byte
}

func (e NewUnknownType) Error() string {
	return fmt.Sprintf("type '%s' is not defined", e.Name)
}
func (e NewUnknownType) Code() ErrCode    { return UnknownType }
func (e NewUnknownType) getStack() []byte { return e.stack }
func (e NewUnknownType) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}

type NewInvalidTypeExpr struct {
	Range
	Expr   string
	Reason string
	stack  []byte
}

func (e NewInvalidTypeExpr) Error() string {
	return fmt.Sprintf("invalid type expression '%s': %s", e.Expr, e.Reason)
}
func (e NewInvalidTypeExpr) Code() ErrCode    { return InvalidTypeExpr }
func (e NewInvalidTypeExpr) getStack() []byte { return e.stack }
func (e NewInvalidTypeExpr) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}

// NewUnificationFailed is reported when two operands of a merge point have no common type.
// First and Second are the offending types.
type NewUnificationFailed struct {
	Range
	First  fmt.Stringer
	Second fmt.Stringer
	// Label names the merge point, it may be empty
	Label string
	stack []byte
}

func (e NewUnificationFailed) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("cannot unify '%v' and '%v' at '%s': no common type", e.First, e.Second, e.Label)
	}
	return fmt.Sprintf("cannot unify '%v' and '%v': no common type", e.First, e.Second)
}
func (e NewUnificationFailed) Code() ErrCode    { return UnificationFailed }
func (e NewUnificationFailed) getStack() []byte { return e.stack }
func (e NewUnificationFailed) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}

// NewInvariantViolation signals a caller defect, like resolving casts for
// types that did not come out of a successful unification.
type NewInvariantViolation struct {
	Range
	From   fmt.Stringer
	To     fmt.Stringer
	Reason string
	stack  []byte
}

func (e NewInvariantViolation) Error() string {
	if e.From == nil || e.To == nil {
		return fmt.Sprintf("invariant violation: %s", e.Reason)
	}
	return fmt.Sprintf("invariant violation: cannot cast '%v' to '%v': %s", e.From, e.To, e.Reason)
}
func (e NewInvariantViolation) Code() ErrCode    { return InvariantViolation }
func (e NewInvariantViolation) getStack() []byte { return e.stack }
func (e NewInvariantViolation) withStack(stack []byte) CompileError {
	e.stack = stack
	return e
}
