package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	out := bytes.NewBuffer(nil)
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUnifyScenarioA(t *testing.T) {
	out, err := run(t, "unify", "Extension(int64)", "int64")
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS Extension(int64)")
	assert.Contains(t, out, "operand 1: wrap int64 -> Extension(int64)")
	assert.NotContains(t, out, "operand 0")
}

func TestUnifyScenarioC(t *testing.T) {
	out, err := run(t, "unify", "int64", "Tuple(int32, int32)")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "FAIL (E004)")
	assert.Contains(t, out, "int64")
	assert.Contains(t, out, "Tuple(int32, int32)")
}

func TestUnifyBadType(t *testing.T) {
	out, err := run(t, "unify", "int64", "Extension(nope)")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "type 'nope' is not defined")
	assert.Contains(t, out, "          ^^^^")
}

func TestLower(t *testing.T) {
	out, err := run(t, "lower", "-p", "demo", "Extension(uint32)", "float32")
	require.NoError(t, err)
	assert.Contains(t, out, "package demo")
	assert.Contains(t, out, "func Merge_ret(sel int, o0 Extension_uint32, o1 float32) Extension_float64 {")
}

func TestEvalWithTypes(t *testing.T) {
	out, err := run(t, "eval",
		"-t", "Extension(int64)", "-v", "Extension_int64{Value: 3}",
		"-t", "int64", "-v", "int64(2)",
		"--select", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "{Value:2}")
}

func TestEvalInferred(t *testing.T) {
	out, err := run(t, "eval", "-v", "uint32(7)", "-v", "float32(1.5)", "--select", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "= 7")
}

func TestEvalTypingError(t *testing.T) {
	out, err := run(t, "eval", "-t", "int64", "-v", "int64(1)", "-t", "Tuple(int32, int32)", "-v", "Tuple2_int32_int32{}")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "FAIL")
}

func TestEvalBadSelector(t *testing.T) {
	_, err := run(t, "eval", "-v", "int64(1)", "--select", "3")
	assert.ErrorContains(t, err, "cannot select value 3")
}

func TestRegistry(t *testing.T) {
	out, err := run(t, "registry")
	require.NoError(t, err)
	assert.Contains(t, out, "constructor Extension(T) lowers to struct { value T }")
	assert.Contains(t, out, "opaque Interval lowers to struct { lo float64; hi float64 }")
	assert.Contains(t, out, "Quaternion")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("constructors:\n  - tag: Masked\n    field: data\n"), 0o644))

	out, err := run(t, "--config", path, "unify", "Masked(int8)", "uint8")
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS Masked(int16)")

	_, err = run(t, "--config", path, "unify", "Extension(int8)", "uint8")
	assert.ErrorIs(t, err, ErrFailed)
}
