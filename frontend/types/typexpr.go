package types

import (
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/cottand/extunify/frontend/typerr"
)

const (
	TupleName    = "Tuple"
	UniTupleName = "UniTuple"
)

// maxUniTuple bounds UniTuple(T, n) so a typo cannot allocate huge tuples
const maxUniTuple = 1 << 10

// parseType parses type expressions, which happen to be valid Go expressions:
//
//	int64
//	Extension(uint32)
//	Tuple(int32, Extension(float64))
//	UniTuple(int64, 3)
//	Interval
//
// Positions in returned errors are 1-based offsets into expr.
func parseType(expr string, s scope) (Type, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, typerr.New(typerr.NewInvalidTypeExpr{
			Expr:   expr,
			Reason: err.Error(),
		})
	}
	p := typeParser{src: expr, scope: s}
	return p.typeOf(node)
}

type typeParser struct {
	src   string
	scope scope
}

func rangeOf(node goast.Node) typerr.Range {
	return typerr.Range{PosStart: node.Pos(), PosEnd: node.End()}
}

func (p typeParser) text(node goast.Node) string {
	start, end := int(node.Pos())-1, int(node.End())-1
	if start < 0 || end > len(p.src) || start > end {
		return p.src
	}
	return p.src[start:end]
}

func (p typeParser) invalid(node goast.Node, reason string) error {
	return typerr.New(typerr.NewInvalidTypeExpr{
		Range:  rangeOf(node),
		Expr:   p.text(node),
		Reason: reason,
	})
}

func (p typeParser) typeOf(node goast.Expr) (Type, error) {
	switch e := node.(type) {
	case *goast.ParenExpr:
		return p.typeOf(e.X)

	case *goast.Ident:
		if t, ok := p.scope.lookup(e.Name); ok {
			return t, nil
		}
		if p.scope.isConstructor(e.Name) {
			return nil, p.invalid(e, fmt.Sprintf("constructor '%s' takes exactly one type argument", e.Name))
		}
		if e.Name == TupleName {
			return NewTuple(), nil
		}
		return nil, typerr.New(typerr.NewUnknownType{Range: rangeOf(e), Name: e.Name})

	case *goast.CallExpr:
		fn, ok := e.Fun.(*goast.Ident)
		if !ok {
			return nil, p.invalid(e.Fun, "expected a constructor name")
		}
		if e.Ellipsis != token.NoPos {
			return nil, p.invalid(e, "variadic arguments are not allowed")
		}
		switch {
		case fn.Name == TupleName:
			elems := make([]Type, len(e.Args))
			for i, arg := range e.Args {
				elem, err := p.typeOf(arg)
				if err != nil {
					return nil, err
				}
				elems[i] = elem
			}
			return NewTuple(elems...), nil

		case fn.Name == UniTupleName:
			if len(e.Args) != 2 {
				return nil, p.invalid(e, "UniTuple takes a type and a length")
			}
			elem, err := p.typeOf(e.Args[0])
			if err != nil {
				return nil, err
			}
			lit, ok := e.Args[1].(*goast.BasicLit)
			if !ok || lit.Kind != token.INT {
				return nil, p.invalid(e.Args[1], "UniTuple length must be an integer literal")
			}
			n, err := strconv.Atoi(lit.Value)
			if err != nil || n < 0 || n > maxUniTuple {
				return nil, p.invalid(lit, fmt.Sprintf("UniTuple length must be between 0 and %d", maxUniTuple))
			}
			return UniTuple(elem, n), nil

		case p.scope.isConstructor(fn.Name):
			if len(e.Args) != 1 {
				return nil, p.invalid(e, fmt.Sprintf("constructor '%s' takes exactly one type argument, got %d", fn.Name, len(e.Args)))
			}
			inner, err := p.typeOf(e.Args[0])
			if err != nil {
				return nil, err
			}
			return &Parametric{Tag: fn.Name, Inner: inner}, nil

		default:
			if _, ok := p.scope.lookup(fn.Name); ok {
				return nil, p.invalid(e, fmt.Sprintf("'%s' is not a type constructor", fn.Name))
			}
			return nil, typerr.New(typerr.NewUnknownType{Range: rangeOf(fn), Name: fn.Name})
		}

	default:
		return nil, p.invalid(node, fmt.Sprintf("unexpected %T in type expression", node))
	}
}
