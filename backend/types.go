package backend

import (
	"fmt"
	goast "go/ast"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cottand/extunify/frontend/types"
)

// goScalar maps a primitive to the Go type storing it.
// Go has no half-precision float, so float16 is stored as a float32.
func goScalar(p *types.Primitive) string {
	switch p.Kind() {
	case types.KindFloat16:
		return "float32"
	default:
		return p.String()
	}
}

// GoTypeName is the deterministic Go identifier of t once lowered
func GoTypeName(t types.Type) string {
	switch t := t.(type) {
	case *types.Primitive:
		return goScalar(t)
	case *types.Parametric:
		return t.Tag + "_" + GoTypeName(t.Inner)
	case *types.Tuple:
		sb := strings.Builder{}
		// the arity keeps Tuple(Tuple(a), b) and Tuple(Tuple(a, b)) apart
		sb.WriteString("Tuple" + strconv.Itoa(len(t.Elems)))
		for _, elem := range t.Elems {
			sb.WriteString("_" + GoTypeName(elem))
		}
		return sb.String()
	case *types.Opaque:
		return t.Name
	default:
		panic(fmt.Sprintf("unexpected type %T", t))
	}
}

// fieldName exports a data model member name so evaluated code can read it
func fieldName(member string) string {
	r, size := utf8.DecodeRuneInString(member)
	return string(unicode.ToUpper(r)) + member[size:]
}

// typeExpr returns the Go type expression of t, declaring the struct of t when it has one
func (l *Lowerer) typeExpr(t types.Type) goast.Expr {
	if p, ok := t.(*types.Primitive); ok {
		return goast.NewIdent(goScalar(p))
	}
	l.declare(t)
	return goast.NewIdent(GoTypeName(t))
}

// declare adds a struct declaration for t and, recursively, for its members
func (l *Lowerer) declare(t types.Type) {
	if !l.declared.Insert(t) {
		return
	}
	model := l.registry.ModelOf(t)
	if model.Kind != types.StructModel {
		return
	}
	fields := make([]*goast.Field, len(model.Members))
	for i, m := range model.Members {
		fields[i] = &goast.Field{
			Names: []*goast.Ident{goast.NewIdent(fieldName(m.Name))},
			Type:  l.typeExpr(m.Type),
		}
	}
	name := GoTypeName(t)
	l.Debug("declaring struct", "name", name, "type", types.LogValue(t))
	l.typeDecls[name] = &goast.GenDecl{
		Tok: token.TYPE,
		Specs: []goast.Spec{&goast.TypeSpec{
			Name: goast.NewIdent(name),
			Type: &goast.StructType{Fields: &goast.FieldList{List: fields}},
		}},
	}
}
