// Package config loads the YAML declaration of the types a Registry knows about.
//
// Declarations are applied in order: constructors first, then opaque types, then aliases,
// so a field or alias may refer to anything declared before it.
package config

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"os"

	"github.com/cottand/extunify/frontend/types"
	"github.com/cottand/extunify/internal/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the top-level registry declaration
type File struct {
	Constructors []Constructor `yaml:"constructors"`
	Opaque       []Opaque      `yaml:"opaque"`
	Aliases      []Alias       `yaml:"aliases"`
}

type Constructor struct {
	Tag string `yaml:"tag"`
	// Field names the member of the lowered struct, it defaults to types.DefaultField
	Field string `yaml:"field,omitempty"`
}

type Opaque struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

type Field struct {
	Name string `yaml:"name"`
	// Type is a type expression, like Extension(float64)
	Type string `yaml:"type"`
}

type Alias struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

var logger = log.Section("config")

// Default is the declaration embedded in the binary
func Default() *File {
	f, err := Parse(bytes.NewReader(defaultYAML), "default.yaml")
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads the declaration at path
func Load(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open registry declaration")
	}
	defer func() { _ = r.Close() }()
	return Parse(r, path)
}

// Parse decodes a declaration. Unknown keys are rejected, name is only used in errors.
func Parse(r io.Reader, name string) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	f := &File{}
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "could not parse %s", name)
	}
	logger.Debug("parsed registry declaration",
		slog.String("name", name),
		slog.Int("constructors", len(f.Constructors)),
		slog.Int("opaque", len(f.Opaque)),
		slog.Int("aliases", len(f.Aliases)))
	return f, nil
}

// Builder registers every declaration of f in a new types.Builder.
// Callers may bind host Go types to the opaque types before building it.
func (f *File) Builder() (*types.Builder, error) {
	b := types.NewBuilder()
	for i, c := range f.Constructors {
		if err := b.RegisterConstructor(c.Tag, c.Field); err != nil {
			return nil, errors.Wrapf(err, "constructors[%d]", i)
		}
	}
	for i, o := range f.Opaque {
		fields := make([]types.Field, len(o.Fields))
		for j, field := range o.Fields {
			t, err := b.Parse(field.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "opaque[%d] (%s): field %s", i, o.Name, field.Name)
			}
			fields[j] = types.Field{Name: field.Name, Type: t}
		}
		if _, err := b.RegisterOpaque(o.Name, fields, nil); err != nil {
			return nil, errors.Wrapf(err, "opaque[%d]", i)
		}
	}
	for i, a := range f.Aliases {
		t, err := b.Parse(a.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "aliases[%d] (%s)", i, a.Name)
		}
		if err := b.RegisterAlias(a.Name, t); err != nil {
			return nil, errors.Wrapf(err, "aliases[%d]", i)
		}
	}
	return b, nil
}

// Registry builds the registry declared by f
func (f *File) Registry() (*types.Registry, error) {
	b, err := f.Builder()
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}
