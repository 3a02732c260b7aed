package types

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/cottand/extunify/frontend/typerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interval struct {
	lo, hi float64
}

type selfTyped struct{}

func (selfTyped) StaticType() Type { return &Opaque{Name: "Self"} }

func testRegistry(t *testing.T) *Registry {
	b := NewBuilder()
	require.NoError(t, b.RegisterConstructor("Extension", ""))
	require.NoError(t, b.RegisterConstructor("Boxed", "payload"))
	_, err := b.RegisterOpaque("Interval", []Field{{"lo", Float64}, {"hi", Float64}}, reflect.TypeOf(interval{}))
	require.NoError(t, err)
	require.NoError(t, b.RegisterAlias("intp", Int64))
	return b.Build()
}

func TestTypeOfHostValues(t *testing.T) {
	r := testRegistry(t)
	testCases := []struct {
		value    any
		expected Type
	}{
		{true, Bool},
		{int8(1), Int8},
		{int16(1), Int16},
		{int32(1), Int32},
		{int64(1), Int64},
		{1, Int64},
		{uint8(1), UInt8},
		{uint16(1), UInt16},
		{uint32(1), UInt32},
		{uint64(1), UInt64},
		{uint(1), UInt64},
		{uintptr(1), UInt64},
		{float32(1), Float32},
		{1.5, Float64},
		{complex64(1), Complex64},
		{complex(1, 2), Complex128},
		{[2]int64{2, 2}, NewTuple(Int64, Int64)},
		{[0]int32{}, NewTuple()},
		{TupleValue{int64(1), float32(2)}, NewTuple(Int64, Float32)},
		{Wrapped{Tag: "Extension", Value: int64(3)}, ext(Int64)},
		{Wrapped{Tag: "Extension", Value: Wrapped{Tag: "Extension", Value: uint32(3)}}, ext(ext(UInt32))},
		{interval{lo: -2, hi: 3}, &Opaque{Name: "Interval"}},
		{selfTyped{}, &Opaque{Name: "Self"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.expected.String(), func(t *testing.T) {
			actual, err := r.TypeOf(testCase.value)
			require.NoError(t, err)
			assert.True(t, testCase.expected.Equals(actual), "expected %s, got %s", testCase.expected, actual)
		})
	}
}

func TestTypeOfUnsupported(t *testing.T) {
	r := testRegistry(t)
	for _, value := range []any{nil, "a string", []int64{1}, map[string]int{}, struct{}{}, TupleValue{int64(1), "nope"}} {
		_, err := r.TypeOf(value)
		require.Error(t, err)
		var compileErr typerr.CompileError
		require.True(t, errors.As(err, &compileErr))
		assert.Equal(t, typerr.UnsupportedValue, compileErr.Code())
	}
}

func TestConstructIsTotal(t *testing.T) {
	r := testRegistry(t)
	assert.True(t, ext(Int64).Equals(r.Construct("Extension", Int64)))
	unregistered := r.Construct("NeverRegistered", NewTuple(Int8))
	assert.Equal(t, "NeverRegistered(Tuple(int8))", unregistered.String())

	c, ok := r.Constructor("NeverRegistered")
	assert.False(t, ok)
	assert.Equal(t, DefaultField, c.Field)
}

func TestBuilderRejectsDuplicatesAndLateRegistration(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.RegisterConstructor("Extension", ""))
	assert.Error(t, b.RegisterConstructor("Extension", ""))
	assert.Error(t, b.RegisterAlias("int64", Int32), "primitive names are reserved")
	assert.Error(t, b.RegisterAlias("Tuple", Int32))
	_, err := b.RegisterOpaque("Bad", []Field{{"x", Int8}, {"x", Int8}}, nil)
	assert.Error(t, err)
	assert.Error(t, b.BindHost("Extension", reflect.TypeOf(interval{})), "only opaque types bind hosts")

	_ = b.Build()
	assert.Error(t, b.RegisterConstructor("Late", ""))
	assert.Error(t, b.RegisterAlias("late", Int8))
}

func TestRegistryNames(t *testing.T) {
	r := testRegistry(t)
	names := r.Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "Extension")
	assert.Contains(t, names, "Interval")
	assert.Contains(t, names, "intp")
	assert.Contains(t, names, "float16")
	assert.Equal(t, []string{"Boxed", "Extension"}, r.Constructors())
	assert.Equal(t, []string{"Interval"}, r.Opaques())
}

func TestModelOf(t *testing.T) {
	r := testRegistry(t)

	m := r.ModelOf(ext(Int64))
	assert.Equal(t, StructModel, m.Kind)
	assert.Equal(t, []Member{{Name: DefaultField, Type: Int64}}, m.Members)

	m = r.ModelOf(&Parametric{Tag: "Boxed", Inner: Float32})
	assert.Equal(t, "payload", m.Members[0].Name)

	m = r.ModelOf(NewTuple(Int8, Bool))
	assert.Equal(t, []Member{{Name: "f0", Type: Int8}, {Name: "f1", Type: Bool}}, m.Members)

	m = r.ModelOf(&Opaque{Name: "Interval"})
	assert.Equal(t, []Member{{Name: "lo", Type: Float64}, {Name: "hi", Type: Float64}}, m.Members)

	assert.Equal(t, ScalarModel, r.ModelOf(UInt16).Kind)
}

func TestRegistryConcurrentReads(t *testing.T) {
	r := testRegistry(t)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				typ, err := r.Parse("Extension(Tuple(intp, Interval))")
				assert.NoError(t, err)
				assert.Equal(t, "Extension(Tuple(int64, Interval))", typ.String())
				_, err = r.TypeOf(interval{})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
