package types

import (
	"hash/fnv"
)

// PrimKind describes the kind of a Primitive type.
type PrimKind uint8

const (
	KindInvalid PrimKind = iota

	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat16
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
)

// PrimInfo describes properties of a Primitive type.
type PrimInfo uint8

const (
	IsBoolean PrimInfo = 1 << iota
	IsSigned
	IsUnsigned
	IsFloat
	IsComplex

	IsInteger = IsSigned | IsUnsigned
	IsNumeric = IsInteger | IsFloat | IsComplex
)

// Primitive is a scalar machine type. There is exactly one *Primitive per PrimKind,
// so primitives can also be compared by pointer.
type Primitive struct {
	kind PrimKind
	info PrimInfo
	// width in bits; for complex types this is the width of the whole value
	width uint8
	name  string
}

func (*Primitive) isType() {}

func (p *Primitive) Kind() PrimKind { return p.kind }
func (p *Primitive) Info() PrimInfo { return p.info }
func (p *Primitive) Width() int     { return int(p.width) }
func (p *Primitive) String() string { return p.name }

// PartWidth is the width of the real and imaginary parts of a complex type,
// and the Width of any other type.
func (p *Primitive) PartWidth() int {
	if p.info&IsComplex != 0 {
		return int(p.width) / 2
	}
	return int(p.width)
}

func (p *Primitive) IsBoolean() bool  { return p.info&IsBoolean != 0 }
func (p *Primitive) IsSigned() bool   { return p.info&IsSigned != 0 }
func (p *Primitive) IsUnsigned() bool { return p.info&IsUnsigned != 0 }
func (p *Primitive) IsInteger() bool  { return p.info&IsInteger != 0 }
func (p *Primitive) IsFloat() bool    { return p.info&IsFloat != 0 }
func (p *Primitive) IsComplex() bool  { return p.info&IsComplex != 0 }
func (p *Primitive) IsNumeric() bool  { return p.info&IsNumeric != 0 }

func (p *Primitive) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Primitive"))
	_, _ = h.Write([]byte{byte(p.kind)})
	return h.Sum64()
}

func (p *Primitive) Equals(other Type) bool {
	o, ok := other.(*Primitive)
	return ok && o.kind == p.kind
}

// Prims holds the primitive types, indexed by PrimKind.
// Prims[KindInvalid] is nil.
var Prims = [...]*Primitive{
	KindInvalid:    nil,
	KindBool:       {kind: KindBool, info: IsBoolean, width: 8, name: "bool"},
	KindInt8:       {kind: KindInt8, info: IsSigned, width: 8, name: "int8"},
	KindInt16:      {kind: KindInt16, info: IsSigned, width: 16, name: "int16"},
	KindInt32:      {kind: KindInt32, info: IsSigned, width: 32, name: "int32"},
	KindInt64:      {kind: KindInt64, info: IsSigned, width: 64, name: "int64"},
	KindUInt8:      {kind: KindUInt8, info: IsUnsigned, width: 8, name: "uint8"},
	KindUInt16:     {kind: KindUInt16, info: IsUnsigned, width: 16, name: "uint16"},
	KindUInt32:     {kind: KindUInt32, info: IsUnsigned, width: 32, name: "uint32"},
	KindUInt64:     {kind: KindUInt64, info: IsUnsigned, width: 64, name: "uint64"},
	KindFloat16:    {kind: KindFloat16, info: IsFloat, width: 16, name: "float16"},
	KindFloat32:    {kind: KindFloat32, info: IsFloat, width: 32, name: "float32"},
	KindFloat64:    {kind: KindFloat64, info: IsFloat, width: 64, name: "float64"},
	KindComplex64:  {kind: KindComplex64, info: IsComplex, width: 64, name: "complex64"},
	KindComplex128: {kind: KindComplex128, info: IsComplex, width: 128, name: "complex128"},
}

var (
	Bool       = Prims[KindBool]
	Int8       = Prims[KindInt8]
	Int16      = Prims[KindInt16]
	Int32      = Prims[KindInt32]
	Int64      = Prims[KindInt64]
	UInt8      = Prims[KindUInt8]
	UInt16     = Prims[KindUInt16]
	UInt32     = Prims[KindUInt32]
	UInt64     = Prims[KindUInt64]
	Float16    = Prims[KindFloat16]
	Float32    = Prims[KindFloat32]
	Float64    = Prims[KindFloat64]
	Complex64  = Prims[KindComplex64]
	Complex128 = Prims[KindComplex128]
)

// Primitives returns every primitive type in PrimKind order
func Primitives() []*Primitive {
	return append([]*Primitive(nil), Prims[KindInvalid+1:]...)
}

// PrimitiveByName finds a primitive by its canonical name, like "uint32"
func PrimitiveByName(name string) (*Primitive, bool) {
	for _, p := range Prims[KindInvalid+1:] {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

func SignedOfWidth(width int) (*Primitive, bool) {
	switch width {
	case 8:
		return Int8, true
	case 16:
		return Int16, true
	case 32:
		return Int32, true
	case 64:
		return Int64, true
	}
	return nil, false
}

func UnsignedOfWidth(width int) (*Primitive, bool) {
	switch width {
	case 8:
		return UInt8, true
	case 16:
		return UInt16, true
	case 32:
		return UInt32, true
	case 64:
		return UInt64, true
	}
	return nil, false
}

func FloatOfWidth(width int) (*Primitive, bool) {
	switch width {
	case 16:
		return Float16, true
	case 32:
		return Float32, true
	case 64:
		return Float64, true
	}
	return nil, false
}

// ComplexOfPartWidth returns the complex type whose parts are floats of the given width.
// There is no complex type with float16 parts, so 16 maps to complex64.
func ComplexOfPartWidth(width int) (*Primitive, bool) {
	switch width {
	case 16, 32:
		return Complex64, true
	case 64:
		return Complex128, true
	}
	return nil, false
}
