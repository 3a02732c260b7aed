package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Type is the static classification of a value.
// Types are immutable and compared structurally with Equals.
//
// The set of variants is closed: *Primitive, *Parametric, *Tuple and *Opaque.
type Type interface {
	fmt.Stringer
	// Hash is stable across processes and equal for types that are Equals
	Hash() uint64
	Equals(Type) bool
	isType()
}

var (
	_ Type = (*Primitive)(nil)
	_ Type = (*Parametric)(nil)
	_ Type = (*Tuple)(nil)
	_ Type = (*Opaque)(nil)
)

// Parametric wraps exactly one inner Type, like Extension(int64).
// It is transparent to unification but sticky in its results.
type Parametric struct {
	Tag   string
	Inner Type
}

func (*Parametric) isType() {}

func (t *Parametric) String() string {
	return t.Tag + "(" + t.Inner.String() + ")"
}

func (t *Parametric) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Parametric"))
	_, _ = h.Write([]byte(t.Tag))
	_, _ = h.Write(binary.LittleEndian.AppendUint64(nil, t.Inner.Hash()))
	return h.Sum64()
}

func (t *Parametric) Equals(other Type) bool {
	o, ok := other.(*Parametric)
	return ok && o.Tag == t.Tag && o.Inner.Equals(t.Inner)
}

// Depth is the number of Parametric wrappers around the first non-Parametric type
func (t *Parametric) Depth() int {
	depth := 1
	for inner, ok := t.Inner.(*Parametric); ok; inner, ok = inner.Inner.(*Parametric) {
		depth++
	}
	return depth
}

// Tuple is an ordered, fixed-size composite of element types
type Tuple struct {
	Elems []Type
}

func NewTuple(elems ...Type) *Tuple {
	return &Tuple{Elems: elems}
}

// UniTuple is a Tuple of n elements of the same type
func UniTuple(elem Type, n int) *Tuple {
	elems := make([]Type, n)
	for i := range elems {
		elems[i] = elem
	}
	return &Tuple{Elems: elems}
}

func (*Tuple) isType() {}

func (t *Tuple) String() string {
	sb := strings.Builder{}
	sb.WriteString("Tuple(")
	for i, elem := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteString(")")
	return sb.String()
}

func (t *Tuple) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Tuple"))
	arr := binary.LittleEndian.AppendUint64(nil, uint64(len(t.Elems)))
	for _, elem := range t.Elems {
		arr = binary.LittleEndian.AppendUint64(arr, elem.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (t *Tuple) Equals(other Type) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Opaque is a named type which only unifies with itself, like Interval
type Opaque struct {
	Name string
}

func (*Opaque) isType() {}

func (t *Opaque) String() string { return t.Name }

func (t *Opaque) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Opaque"))
	_, _ = h.Write([]byte(t.Name))
	return h.Sum64()
}

func (t *Opaque) Equals(other Type) bool {
	o, ok := other.(*Opaque)
	return ok && o.Name == t.Name
}

// Equal reports whether a and b are the same type. Nil types are only equal to each other.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}
