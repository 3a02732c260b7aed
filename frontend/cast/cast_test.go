package cast

import (
	"errors"
	"testing"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/frontend/unify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ext(inner types.Type) types.Type { return &types.Parametric{Tag: "Extension", Inner: inner} }
func box(inner types.Type) types.Type { return &types.Parametric{Tag: "Box", Inner: inner} }

func requireViolation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var compileErr typerr.CompileError
	require.True(t, errors.As(err, &compileErr), "expected a CompileError, got %v", err)
	assert.Equal(t, typerr.InvariantViolation, compileErr.Code())
}

func TestCastIdempotence(t *testing.T) {
	r := NewResolver()
	for _, typ := range []types.Type{types.Int64, ext(types.Int64), types.NewTuple(types.Int8, ext(types.Bool))} {
		casts, err := r.Resolve(typ, []types.Type{typ, typ})
		require.NoError(t, err)
		assert.Empty(t, casts)
	}
}

func TestScenarioWrap(t *testing.T) {
	e, r := unify.NewEngine(), NewResolver()
	operands := []types.Type{ext(types.Int64), types.Int64}

	res := e.Unify(operands[0], operands[1])
	require.True(t, res.Ok())
	casts, err := r.ResolveResult(res, operands)
	require.NoError(t, err)

	require.Len(t, casts, 1)
	c := casts[0]
	assert.Equal(t, 1, c.Operand)
	assert.Equal(t, Wrap, c.Kind)
	assert.Same(t, types.Int64, c.From)
	assert.True(t, ext(types.Int64).Equals(c.To))
	assert.Nil(t, c.Inner, "the payload is already an int64")
	assert.Equal(t, "wrap int64 -> Extension(int64)", c.String())
}

func TestScenarioPromoteAndWrap(t *testing.T) {
	e, r := unify.NewEngine(), NewResolver()
	operands := []types.Type{ext(types.UInt32), types.Float32}

	res := e.Unify(operands[0], operands[1])
	require.True(t, res.Ok())
	assert.Equal(t, "Extension(float64)", res.Type().String())

	casts, err := r.ResolveResult(res, operands)
	require.NoError(t, err)
	require.Len(t, casts, 2)

	assert.Equal(t, 0, casts[0].Operand)
	assert.Equal(t, Rewrap, casts[0].Kind)
	require.NotNil(t, casts[0].Inner)
	assert.Equal(t, Convert, casts[0].Inner.Kind)
	assert.Same(t, types.UInt32, casts[0].Inner.From)
	assert.Same(t, types.Float64, casts[0].Inner.To)

	assert.Equal(t, 1, casts[1].Operand)
	assert.Equal(t, Wrap, casts[1].Kind)
	require.NotNil(t, casts[1].Inner)
	assert.Equal(t, "wrap float32 -> Extension(float64) [convert float32 -> float64]", casts[1].String())
}

func TestScenarioFailedUnification(t *testing.T) {
	e, r := unify.NewEngine(), NewResolver()
	operands := []types.Type{types.Int64, types.NewTuple(types.Int32, types.Int32)}
	res := e.Unify(operands[0], operands[1])
	require.False(t, res.Ok())

	_, err := r.ResolveResult(res, operands)
	requireViolation(t, err)
}

func TestNestedDescriptors(t *testing.T) {
	r := NewResolver()

	d, err := r.Describe(0, types.Int8, ext(ext(types.Int32)))
	require.NoError(t, err)
	assert.Equal(t, "wrap int8 -> Extension(Extension(int32)) [wrap int8 -> Extension(int32) [convert int8 -> int32]]", d.String())

	d, err = r.Describe(2, box(types.Int8), ext(box(types.Int16)))
	require.NoError(t, err)
	assert.Equal(t, Wrap, d.Kind)
	assert.Equal(t, Rewrap, d.Inner.Kind)
	assert.Equal(t, 2, d.Inner.Inner.Operand)

	d, err = r.Describe(0, types.NewTuple(types.Int8, types.Bool), types.NewTuple(ext(types.Int8), types.Bool))
	require.NoError(t, err)
	assert.Equal(t, Tuple, d.Kind)
	require.Len(t, d.Elems, 2)
	assert.Equal(t, Wrap, d.Elems[0].Kind)
	assert.Nil(t, d.Elems[1])
	assert.Equal(t, "tuple Tuple(int8, bool) -> Tuple(Extension(int8), bool) [wrap int8 -> Extension(int8); _]", d.String())

	d, err = r.Describe(0, types.Int8, types.Int8)
	assert.NoError(t, err)
	assert.Nil(t, d)
}

// every cast the resolver produces for a successful unification must be describable
func TestResolveAgreesWithUnify(t *testing.T) {
	e, r := unify.NewEngine(), NewResolver()
	operands := []types.Type{
		types.Bool, types.Int8, types.UInt64, types.Float16, types.Complex64,
		ext(types.Int16), ext(ext(types.UInt8)), box(types.Float32),
		ext(box(types.Int8)), box(types.Int16), box(ext(types.Int16)),
		types.NewTuple(types.Int8, types.Int8), types.NewTuple(ext(types.Int32), types.Float32),
		&types.Opaque{Name: "Interval"},
	}
	for _, a := range operands {
		for _, b := range operands {
			res := e.Unify(a, b)
			if !res.Ok() {
				continue
			}
			casts, err := r.ResolveResult(res, []types.Type{a, b})
			assert.NoError(t, err, "unify(%s, %s) = %s", a, b, res.Type())
			for _, c := range casts {
				assert.True(t, res.Type().Equals(c.To))
			}
		}
	}
}

func TestInvariantViolations(t *testing.T) {
	r := NewResolver()
	testCases := []struct {
		name     string
		from, to types.Type
	}{
		{"unwrap", ext(types.Int64), types.Int64},
		{"narrowing", types.Float64, types.Int32},
		{"different tags cannot unwrap", box(types.Int64), ext(types.Int64)},
		{"scalar to tuple", types.Int64, types.NewTuple(types.Int64)},
		{"tuple arity", types.NewTuple(types.Int8), types.NewTuple(types.Int8, types.Int8)},
		{"opaque", &types.Opaque{Name: "Interval"}, &types.Opaque{Name: "Quaternion"}},
		{"to opaque", types.Float64, &types.Opaque{Name: "Interval"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := r.Resolve(testCase.to, []types.Type{testCase.to, testCase.from})
			requireViolation(t, err)
			assert.Contains(t, err.Error(), "operand 1")
		})
	}

	_, err := r.Resolve(nil, []types.Type{types.Int8})
	requireViolation(t, err)
	_, err = r.Resolve(types.Int8, []types.Type{nil})
	requireViolation(t, err)
}
