package types

import (
	"strconv"
)

type ModelKind uint8

const (
	// ScalarModel is a single machine value
	ScalarModel ModelKind = iota
	// StructModel is an aggregate of named members
	StructModel
)

// Member is a named slot of a StructModel
type Member struct {
	Name string
	Type Type
}

// Model describes how values of a Type are laid out once lowered.
// A Parametric lowers to a struct with a single member holding its inner value.
type Model struct {
	Kind    ModelKind
	Type    Type
	Members []Member
}

// ModelOf returns the data model of t. Opaque types that were never registered have no members.
func (r *Registry) ModelOf(t Type) Model {
	switch t := t.(type) {
	case *Parametric:
		c, _ := r.Constructor(t.Tag)
		return Model{Kind: StructModel, Type: t, Members: []Member{{Name: c.Field, Type: t.Inner}}}
	case *Tuple:
		members := make([]Member, len(t.Elems))
		for i, elem := range t.Elems {
			members[i] = Member{Name: "f" + strconv.Itoa(i), Type: elem}
		}
		return Model{Kind: StructModel, Type: t, Members: members}
	case *Opaque:
		def, _ := r.Opaque(t.Name)
		members := make([]Member, len(def.Fields))
		for i, f := range def.Fields {
			members[i] = Member{Name: f.Name, Type: f.Type}
		}
		return Model{Kind: StructModel, Type: t, Members: members}
	default:
		return Model{Kind: ScalarModel, Type: t}
	}
}
