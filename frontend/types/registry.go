package types

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/extunify/internal/log"
	"github.com/hashicorp/go-set/v2"
)

// DefaultField is the member name of a Parametric's data model when its constructor does not name one
const DefaultField = "value"

// Constructor is a registered Parametric type constructor
type Constructor struct {
	Tag string
	// Field names the single member of the lowered wrapper struct
	Field string
}

// Field is a member of an Opaque type's data model
type Field struct {
	Name string
	Type Type
}

// OpaqueDef is a registered Opaque type together with its data model
type OpaqueDef struct {
	Type   *Opaque
	Fields []Field
	// Host is the Go type whose values TypeOf maps to this type, it may be nil
	Host reflect.Type
}

// Builder populates a Registry. It is only meant to be used at start-up:
// once Build is called no further registration is possible.
type Builder struct {
	constructors map[string]Constructor
	opaques      map[string]OpaqueDef
	aliases      map[string]Type
	hosts        map[string]Type
	// names holds every name a type expression can refer to
	names *set.Set[string]
	built bool
}

func NewBuilder() *Builder {
	names := set.New[string](len(Prims))
	for _, p := range Primitives() {
		names.Insert(p.name)
	}
	names.Insert(TupleName)
	names.Insert(UniTupleName)
	return &Builder{
		constructors: make(map[string]Constructor),
		opaques:      make(map[string]OpaqueDef),
		aliases:      make(map[string]Type),
		hosts:        make(map[string]Type),
		names:        names,
	}
}

func (b *Builder) claim(name string) error {
	if b.built {
		return fmt.Errorf("cannot register '%s': registry already built", name)
	}
	if name == "" {
		return fmt.Errorf("cannot register a type with an empty name")
	}
	if !b.names.Insert(name) {
		return fmt.Errorf("name '%s' is already registered", name)
	}
	return nil
}

// RegisterConstructor declares a Parametric constructor. An empty field defaults to DefaultField.
func (b *Builder) RegisterConstructor(tag, field string) error {
	if err := b.claim(tag); err != nil {
		return err
	}
	if field == "" {
		field = DefaultField
	}
	b.constructors[tag] = Constructor{Tag: tag, Field: field}
	return nil
}

// RegisterOpaque declares an Opaque type with the members of its data model.
// host may be nil if no Go values map to the type.
func (b *Builder) RegisterOpaque(name string, fields []Field, host reflect.Type) (*Opaque, error) {
	if err := b.claim(name); err != nil {
		return nil, err
	}
	seen := set.New[string](len(fields))
	for _, f := range fields {
		if f.Type == nil || f.Name == "" {
			return nil, fmt.Errorf("opaque type '%s' has a malformed field '%s'", name, f.Name)
		}
		if !seen.Insert(f.Name) {
			return nil, fmt.Errorf("opaque type '%s' has duplicate field '%s'", name, f.Name)
		}
	}
	t := &Opaque{Name: name}
	b.opaques[name] = OpaqueDef{Type: t, Fields: fields}
	if host != nil {
		if err := b.BindHost(name, host); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// BindHost makes TypeOf map values of Go type host to the already registered opaque type name
func (b *Builder) BindHost(name string, host reflect.Type) error {
	if b.built {
		return fmt.Errorf("cannot bind '%v': registry already built", host)
	}
	def, ok := b.opaques[name]
	if !ok {
		return fmt.Errorf("cannot bind '%v' to '%s': not an opaque type", host, name)
	}
	if _, bound := b.hosts[hostKey(host)]; bound {
		return fmt.Errorf("go type '%v' is already bound", host)
	}
	def.Host = host
	b.opaques[name] = def
	b.hosts[hostKey(host)] = def.Type
	return nil
}

// RegisterAlias makes name refer to t in type expressions
func (b *Builder) RegisterAlias(name string, t Type) error {
	if t == nil {
		return fmt.Errorf("alias '%s' has no type", name)
	}
	if err := b.claim(name); err != nil {
		return err
	}
	b.aliases[name] = t
	return nil
}

// Parse parses a type expression against what has been registered so far
func (b *Builder) Parse(expr string) (Type, error) {
	return parseType(expr, builderScope{b})
}

// Build freezes the registered types into a Registry
func (b *Builder) Build() *Registry {
	b.built = true
	r := &Registry{
		constructors: immutable.NewMap[string, Constructor](nil),
		opaques:      immutable.NewMap[string, OpaqueDef](nil),
		aliases:      immutable.NewMap[string, Type](nil),
		hosts:        immutable.NewMap[string, Type](nil),
		logger:       log.Section("registry"),
	}
	for k, v := range b.constructors {
		r.constructors = r.constructors.Set(k, v)
	}
	for k, v := range b.opaques {
		r.opaques = r.opaques.Set(k, v)
	}
	for k, v := range b.aliases {
		r.aliases = r.aliases.Set(k, v)
	}
	for k, v := range b.hosts {
		r.hosts = r.hosts.Set(k, v)
	}
	r.logger.Debug("built registry",
		slog.Int("constructors", r.constructors.Len()),
		slog.Int("opaques", r.opaques.Len()),
		slog.Int("aliases", r.aliases.Len()))
	return r
}

// Registry is the read-only, process-wide table of known types.
// It is safe for concurrent use.
type Registry struct {
	constructors *immutable.Map[string, Constructor]
	opaques      *immutable.Map[string, OpaqueDef]
	aliases      *immutable.Map[string, Type]
	// hosts is keyed by hostKey
	hosts  *immutable.Map[string, Type]
	logger *slog.Logger
}

// Construct builds the Parametric type tag(inner). It never fails, tag need not be registered.
func (r *Registry) Construct(tag string, inner Type) Type {
	return &Parametric{Tag: tag, Inner: inner}
}

// Constructor returns the registered constructor for tag, or a constructor with the DefaultField
// and false when tag was never registered
func (r *Registry) Constructor(tag string) (Constructor, bool) {
	c, ok := r.constructors.Get(tag)
	if !ok {
		return Constructor{Tag: tag, Field: DefaultField}, false
	}
	return c, true
}

func (r *Registry) Opaque(name string) (OpaqueDef, bool) {
	return r.opaques.Get(name)
}

// Lookup resolves a nullary type name: a primitive, an opaque type or an alias
func (r *Registry) Lookup(name string) (Type, bool) {
	if p, ok := PrimitiveByName(name); ok {
		return p, true
	}
	if def, ok := r.opaques.Get(name); ok {
		return def.Type, true
	}
	return r.aliases.Get(name)
}

func (r *Registry) Parse(expr string) (Type, error) {
	return parseType(expr, registryScope{r})
}

// Names returns every name usable in a type expression, sorted
func (r *Registry) Names() []string {
	names := []string{TupleName, UniTupleName}
	for _, p := range Primitives() {
		names = append(names, p.name)
	}
	names = appendKeys(names, r.constructors.Iterator())
	names = appendKeys(names, r.opaques.Iterator())
	names = appendKeys(names, r.aliases.Iterator())
	sort.Strings(names)
	return names
}

// Constructors returns the registered constructor tags, sorted
func (r *Registry) Constructors() []string {
	tags := appendKeys(nil, r.constructors.Iterator())
	sort.Strings(tags)
	return tags
}

// Opaques returns the registered opaque type names, sorted
func (r *Registry) Opaques() []string {
	names := appendKeys(nil, r.opaques.Iterator())
	sort.Strings(names)
	return names
}

func appendKeys[V any](dst []string, itr *immutable.MapIterator[string, V]) []string {
	for !itr.Done() {
		k, _, ok := itr.Next()
		if !ok {
			break
		}
		dst = append(dst, k)
	}
	return dst
}

func hostKey(t reflect.Type) string {
	return t.PkgPath() + "#" + t.String()
}

// scope is what the type expression parser resolves names against
type scope interface {
	lookup(name string) (Type, bool)
	isConstructor(tag string) bool
}

type builderScope struct{ *Builder }

func (s builderScope) lookup(name string) (Type, bool) {
	if p, ok := PrimitiveByName(name); ok {
		return p, true
	}
	if def, ok := s.opaques[name]; ok {
		return def.Type, true
	}
	t, ok := s.aliases[name]
	return t, ok
}

func (s builderScope) isConstructor(tag string) bool {
	_, ok := s.constructors[tag]
	return ok
}

type registryScope struct{ *Registry }

func (s registryScope) lookup(name string) (Type, bool) { return s.Lookup(name) }

func (s registryScope) isConstructor(tag string) bool {
	_, ok := s.constructors.Get(tag)
	return ok
}
