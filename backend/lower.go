// Package backend lowers the merge points of a compilation unit to Go source.
//
// Every data model becomes a Go struct, every cast becomes a Cast_<label>_<operand> function
// and every merge point a Merge_<label> function selecting one of its operands:
//
//	func Merge_ret(sel int, o0 Extension_int64, o1 int64) Extension_int64
package backend

import (
	"errors"
	"fmt"
	goast "go/ast"
	"go/token"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"unicode"

	"github.com/cottand/extunify/compile"
	"github.com/cottand/extunify/frontend/cast"
	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/internal/log"
	"github.com/hashicorp/go-set/v2"
	xset "github.com/xtgo/set"
)

type Lowerer struct {
	registry *types.Registry
	declared *set.HashSet[types.Type, uint64]
	// typeDecls is keyed by GoTypeName
	typeDecls map[string]*goast.GenDecl

	*slog.Logger
}

func NewLowerer(registry *types.Registry) *Lowerer {
	return &Lowerer{
		registry:  registry,
		declared:  set.NewHashSet[types.Type, uint64](0),
		typeDecls: make(map[string]*goast.GenDecl),
		Logger:    log.Section("backend"),
	}
}

// Lower emits a single Go file of pkgName for every merge point of units.
// Units with typing errors or internal failures cannot be lowered, and two units
// may not share a merge point label.
//
// Each call starts from an empty set of declarations, so a Lowerer can be reused.
func (l *Lowerer) Lower(pkgName string, units ...*compile.Unit) (*goast.File, error) {
	l.declared = set.NewHashSet[types.Type, uint64](0)
	l.typeDecls = make(map[string]*goast.GenDecl)

	var errs *typerr.Errors
	for _, unit := range units {
		if unit.Aborted() {
			return nil, fmt.Errorf("cannot lower aborted unit %s: %w", unit.Name(), errors.Join(unit.Failures()...))
		}
		errs = errs.Merge(unit.Errors())
	}
	if errs.HasError() {
		l.Debug("refusing to lower", "errors", errs)
		return nil, fmt.Errorf("cannot lower: units have %d typing errors", len(errs.Errors()))
	}

	// labels is the sorted set of the labels lowered so far
	var labels []string
	var funcs []goast.Decl
	for _, unit := range units {
		l.Debug("lowering unit", "unit", unit.ID.String(), "mergePoints", len(unit.MergePoints()))

		unitLabels, err := mergeLabels(unit)
		if err != nil {
			return nil, err
		}
		if clashing := intersect(labels, unitLabels); len(clashing) > 0 {
			return nil, fmt.Errorf("unit %s reuses merge point labels %v", unit.Name(), clashing)
		}
		labels = union(labels, unitLabels)

		for _, mp := range unit.MergePoints() {
			castNames := make(map[int]string, len(mp.Casts))
			for _, c := range mp.Casts {
				name := "Cast_" + mp.Label + "_" + strconv.Itoa(c.Operand)
				castNames[c.Operand] = name
				funcs = append(funcs, l.castFunc(name, &c))
			}
			funcs = append(funcs, l.mergeFunc(mp.Label, mp, castNames))
		}
	}

	return &goast.File{
		Name:  goast.NewIdent(pkgName),
		Decls: append(l.sortedTypeDecls(), funcs...),
	}, nil
}

// mergeLabels returns the sorted labels of unit, which must be valid identifiers
func mergeLabels(unit *compile.Unit) ([]string, error) {
	labels := make([]string, len(unit.MergePoints()))
	for i, mp := range unit.MergePoints() {
		if err := identifier(mp.Label); err != nil {
			return nil, err
		}
		labels[i] = mp.Label
	}
	sort.Strings(labels)
	return labels, nil
}

// intersect returns the elements of the sorted sets a and b found in both
func intersect(a, b []string) []string {
	data := append(slices.Clone(a), b...)
	return data[:xset.Inter(sort.StringSlice(data), len(a))]
}

// union returns the sorted set of the elements of the sorted sets a and b
func union(a, b []string) []string {
	data := append(slices.Clone(a), b...)
	return data[:xset.Union(sort.StringSlice(data), len(a))]
}

// sortedTypeDecls returns the struct declarations ordered by name
func (l *Lowerer) sortedTypeDecls() []goast.Decl {
	names := make([]string, 0, len(l.typeDecls))
	for name := range l.typeDecls {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]goast.Decl, len(names))
	for i, name := range names {
		decls[i] = l.typeDecls[name]
	}
	return decls
}

// identifier checks a merge point label can be part of a Go identifier
func identifier(label string) error {
	for i, r := range label {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("merge point label '%s' is not a valid identifier", label)
	}
	return nil
}

// castFunc emits
//
//	func name(v From) To { return <conversion of v> }
func (l *Lowerer) castFunc(name string, c *cast.Descriptor) goast.Decl {
	return &goast.FuncDecl{
		Name: goast.NewIdent(name),
		Type: &goast.FuncType{
			Params:  &goast.FieldList{List: []*goast.Field{{Names: []*goast.Ident{goast.NewIdent("v")}, Type: l.typeExpr(c.From)}}},
			Results: &goast.FieldList{List: []*goast.Field{{Type: l.typeExpr(c.To)}}},
		},
		Body: &goast.BlockStmt{List: []goast.Stmt{
			&goast.ReturnStmt{Results: []goast.Expr{l.convert(c, goast.NewIdent("v"))}},
		}},
	}
}

// mergeFunc emits
//
//	func Merge_label(sel int, o0 T0, o1 T1) U {
//		switch sel {
//		case 0:
//			return Cast_label_0(o0)
//		case 1:
//			return o1
//		}
//		panic("Merge_label: no operand selected")
//	}
func (l *Lowerer) mergeFunc(label string, mp *compile.MergePoint, castNames map[int]string) goast.Decl {
	name := "Merge_" + label
	params := []*goast.Field{{Names: []*goast.Ident{goast.NewIdent("sel")}, Type: goast.NewIdent("int")}}
	var cases []goast.Stmt
	for i, operand := range mp.Operands {
		param := goast.NewIdent("o" + strconv.Itoa(i))
		params = append(params, &goast.Field{Names: []*goast.Ident{param}, Type: l.typeExpr(operand)})

		var result goast.Expr = goast.NewIdent(param.Name)
		if castName, ok := castNames[i]; ok {
			result = &goast.CallExpr{Fun: goast.NewIdent(castName), Args: []goast.Expr{goast.NewIdent(param.Name)}}
		}
		cases = append(cases, &goast.CaseClause{
			List: []goast.Expr{intLit(i)},
			Body: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{result}}},
		})
	}
	return &goast.FuncDecl{
		Name: goast.NewIdent(name),
		Type: &goast.FuncType{
			Params:  &goast.FieldList{List: params},
			Results: &goast.FieldList{List: []*goast.Field{{Type: l.typeExpr(mp.Type)}}},
		},
		Body: &goast.BlockStmt{List: []goast.Stmt{
			&goast.SwitchStmt{Tag: goast.NewIdent("sel"), Body: &goast.BlockStmt{List: cases}},
			&goast.ExprStmt{X: &goast.CallExpr{
				Fun:  goast.NewIdent("panic"),
				Args: []goast.Expr{strLit(name + ": no operand selected")},
			}},
		}},
	}
}

// convert returns the expression converting x as described by c. A nil c leaves x unchanged.
func (l *Lowerer) convert(c *cast.Descriptor, x goast.Expr) goast.Expr {
	if c == nil {
		return x
	}
	switch c.Kind {
	case cast.Convert:
		return l.convertPrimitive(c.From.(*types.Primitive), c.To.(*types.Primitive), x)

	case cast.Wrap:
		return l.wrap(c.To.(*types.Parametric), l.convert(c.Inner, x))

	case cast.Rewrap:
		from := c.From.(*types.Parametric)
		payload := &goast.SelectorExpr{X: x, Sel: goast.NewIdent(l.payloadField(from))}
		return l.wrap(c.To.(*types.Parametric), l.convert(c.Inner, payload))

	case cast.Tuple:
		to := c.To.(*types.Tuple)
		model := l.registry.ModelOf(to)
		elts := make([]goast.Expr, len(to.Elems))
		for i, m := range model.Members {
			elem := &goast.SelectorExpr{X: x, Sel: goast.NewIdent(fieldName(m.Name))}
			elts[i] = &goast.KeyValueExpr{Key: goast.NewIdent(fieldName(m.Name)), Value: l.convert(c.Elems[i], elem)}
		}
		return &goast.CompositeLit{Type: l.typeExpr(to), Elts: elts}
	}
	panic(fmt.Sprintf("unexpected cast kind %v", c.Kind))
}

func (l *Lowerer) payloadField(p *types.Parametric) string {
	c, _ := l.registry.Constructor(p.Tag)
	return fieldName(c.Field)
}

func (l *Lowerer) wrap(to *types.Parametric, payload goast.Expr) goast.Expr {
	return &goast.CompositeLit{
		Type: l.typeExpr(to),
		Elts: []goast.Expr{&goast.KeyValueExpr{Key: goast.NewIdent(l.payloadField(to)), Value: payload}},
	}
}

func (l *Lowerer) convertPrimitive(from, to *types.Primitive, x goast.Expr) goast.Expr {
	if from.IsBoolean() {
		// func() To { if x { return 1 }; return 0 }()
		return &goast.CallExpr{Fun: &goast.FuncLit{
			Type: &goast.FuncType{
				Params:  &goast.FieldList{},
				Results: &goast.FieldList{List: []*goast.Field{{Type: goast.NewIdent(goScalar(to))}}},
			},
			Body: &goast.BlockStmt{List: []goast.Stmt{
				&goast.IfStmt{Cond: x, Body: &goast.BlockStmt{List: []goast.Stmt{
					&goast.ReturnStmt{Results: []goast.Expr{intLit(1)}},
				}}},
				&goast.ReturnStmt{Results: []goast.Expr{intLit(0)}},
			}},
		}}
	}
	if to.IsComplex() && !from.IsComplex() {
		part, _ := types.FloatOfWidth(to.PartWidth())
		return &goast.CallExpr{Fun: goast.NewIdent("complex"), Args: []goast.Expr{
			&goast.CallExpr{Fun: goast.NewIdent(goScalar(part)), Args: []goast.Expr{x}},
			intLit(0),
		}}
	}
	return &goast.CallExpr{Fun: goast.NewIdent(goScalar(to)), Args: []goast.Expr{x}}
}

func intLit(i int) *goast.BasicLit {
	return &goast.BasicLit{Kind: token.INT, Value: strconv.Itoa(i)}
}

func strLit(s string) *goast.BasicLit {
	return &goast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}
