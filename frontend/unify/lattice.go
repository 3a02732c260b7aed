package unify

import (
	"github.com/cottand/extunify/frontend/types"
)

// category orders primitives for promotion: bool < integer < float < complex
func category(p *types.Primitive) int {
	switch {
	case p.IsBoolean():
		return 0
	case p.IsInteger():
		return 1
	case p.IsFloat():
		return 2
	default:
		return 3
	}
}

// floatCover is the narrowest float width that holds every value of an integer width,
// saturating at 64 like numpy does for 64-bit integers
func floatCover(intWidth int) int {
	switch intWidth {
	case 8:
		return 16
	case 16:
		return 32
	default:
		return 64
	}
}

// Promote returns the narrowest primitive both a and b widen to.
//
// The lattice is total over primitives and symmetric, so ok is only false for nil operands.
//
//	bool ⊔ N                 = N
//	int(w1) ⊔ int(w2)        = int(max(w1, w2))          (same signedness)
//	int(ws) ⊔ uint(wu)       = int(ws)   if ws > wu
//	                         = int(2·wu) if wu < 64
//	                         = float64   otherwise
//	int(w) ⊔ float(wf)       = float(max(wf, cover(w)))
//	float(w1) ⊔ float(w2)    = float(max(w1, w2))
//	complex(p) ⊔ X           = complex(max(p, width X widens to as a float))
func Promote(a, b *types.Primitive) (*types.Primitive, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	if a.Kind() == b.Kind() {
		return a, true
	}
	if category(a) > category(b) || (category(a) == category(b) && a.Kind() > b.Kind()) {
		a, b = b, a
	}

	switch {
	case a.IsBoolean():
		return b, true

	case a.IsInteger() && b.IsInteger():
		return promoteInts(a, b)

	case a.IsInteger() && b.IsFloat():
		return types.FloatOfWidth(max(b.Width(), floatCover(a.Width())))

	case a.IsInteger() && b.IsComplex():
		return types.ComplexOfPartWidth(max(b.PartWidth(), floatCover(a.Width())))

	case a.IsFloat() && b.IsFloat():
		return types.FloatOfWidth(max(a.Width(), b.Width()))

	case a.IsFloat() && b.IsComplex():
		return types.ComplexOfPartWidth(max(a.Width(), b.PartWidth()))

	case a.IsComplex() && b.IsComplex():
		return types.ComplexOfPartWidth(max(a.PartWidth(), b.PartWidth()))
	}
	return nil, false
}

func promoteInts(a, b *types.Primitive) (*types.Primitive, bool) {
	if a.IsSigned() == b.IsSigned() {
		if a.Width() >= b.Width() {
			return a, true
		}
		return b, true
	}
	signed, unsigned := a, b
	if unsigned.IsSigned() {
		signed, unsigned = unsigned, signed
	}
	switch {
	case signed.Width() > unsigned.Width():
		return signed, true
	case unsigned.Width() < 64:
		return types.SignedOfWidth(2 * unsigned.Width())
	default:
		return types.Float64, true
	}
}

// Widens reports whether a value of from can be implicitly converted to to
func Widens(from, to *types.Primitive) bool {
	p, ok := Promote(from, to)
	return ok && p == to
}
