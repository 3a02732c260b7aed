package types

import (
	"errors"
	"testing"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeExpressions(t *testing.T) {
	r := testRegistry(t)
	testCases := map[string]Type{
		"int64":                            Int64,
		"(float16)":                        Float16,
		"intp":                             Int64,
		"Extension(uint32)":                ext(UInt32),
		"Extension(Extension(int64))":      ext(ext(Int64)),
		"Tuple(int32, int32)":              NewTuple(Int32, Int32),
		"Tuple()":                          NewTuple(),
		"Tuple":                            NewTuple(),
		"UniTuple(int64, 3)":               UniTuple(Int64, 3),
		"Tuple(Extension(bool), Interval)": NewTuple(ext(Bool), &Opaque{Name: "Interval"}),
		"Boxed(Tuple(complex64, float64))": &Parametric{Tag: "Boxed", Inner: NewTuple(Complex64, Float64)},
		"Extension(UniTuple(Extension(int8), 2))": ext(UniTuple(ext(Int8), 2)),
	}
	for expr, expected := range testCases {
		t.Run(expr, func(t *testing.T) {
			actual, err := r.Parse(expr)
			require.NoError(t, err)
			assert.True(t, expected.Equals(actual), "expected %s, got %s", expected, actual)
		})
	}
}

func TestParseRoundTrips(t *testing.T) {
	r := testRegistry(t)
	for _, typ := range []Type{ext(ext(UInt32)), NewTuple(Int8, ext(Float64)), &Opaque{Name: "Interval"}, Complex128} {
		parsed, err := r.Parse(typ.String())
		require.NoError(t, err)
		assert.True(t, typ.Equals(parsed))
	}
}

func TestParseErrors(t *testing.T) {
	r := testRegistry(t)
	testCases := map[string]typerr.ErrCode{
		"int128":                  typerr.UnknownType,
		"Nope(int64)":             typerr.UnknownType,
		"Tuple(int64, Nope)":      typerr.UnknownType,
		"Extension":               typerr.InvalidTypeExpr,
		"Extension(int64, int64)": typerr.InvalidTypeExpr,
		"int64(int8)":             typerr.InvalidTypeExpr,
		"UniTuple(int64)":         typerr.InvalidTypeExpr,
		"UniTuple(int64, n)":      typerr.InvalidTypeExpr,
		"UniTuple(int64, 99999)":  typerr.InvalidTypeExpr,
		"[]int64":                 typerr.InvalidTypeExpr,
		"Extension(":              typerr.InvalidTypeExpr,
		"a.b(int64)":              typerr.InvalidTypeExpr,
	}
	for expr, code := range testCases {
		t.Run(expr, func(t *testing.T) {
			_, err := r.Parse(expr)
			require.Error(t, err)
			var compileErr typerr.CompileError
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, code, compileErr.Code(), compileErr.Error())
		})
	}
}

func TestParseErrorPositions(t *testing.T) {
	r := testRegistry(t)
	expr := "Tuple(int64, Nope)"
	_, err := r.Parse(expr)
	var compileErr typerr.CompileError
	require.True(t, errors.As(err, &compileErr))
	formatted := typerr.FormatWithSource(compileErr, expr)
	assert.Contains(t, formatted, "type 'Nope' is not defined")
	assert.Contains(t, formatted, "             ^^^^")
}

func TestBuilderParseSeesEarlierRegistrations(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterConstructor("Extension", ""))
	typ, err := b.Parse("Extension(float32)")
	require.NoError(t, err)
	require.NoError(t, b.RegisterAlias("extf", typ))

	_, err = b.Parse("Later")
	assert.Error(t, err)

	r := b.Build()
	aliased, err := r.Parse("Tuple(extf)")
	require.NoError(t, err)
	assert.Equal(t, "Tuple(Extension(float32))", aliased.String())
}
