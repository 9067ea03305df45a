// ═══════════════════════════════════════════════════════════════════════════════
// SCHEMA: Attribute Metadata and Diffing
// ═══════════════════════════════════════════════════════════════════════════════
// A Schema names every attribute an index knows about, assigns each a stable
// SchemaAttr, records which of {displayed, indexed, ranked} apply to it, and
// names one attribute as the document identifier.
//
// Attribute order matters: SchemaAttr values are positional (0, 1, 2, ...) in
// the order attributes were registered with the builder, and that ordering
// is itself part of what a schema Diff reports changing.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import "fmt"

// SchemaProps records which roles an attribute plays.
type SchemaProps struct {
	Displayed bool
	Indexed   bool
	Ranked    bool
}

// Or returns the attribute-wise logical OR of two SchemaProps, used when
// combining the Displayed/Indexed/Ranked values below.
func (p SchemaProps) Or(other SchemaProps) SchemaProps {
	return SchemaProps{
		Displayed: p.Displayed || other.Displayed,
		Indexed:   p.Indexed || other.Indexed,
		Ranked:    p.Ranked || other.Ranked,
	}
}

var (
	Displayed = SchemaProps{Displayed: true}
	Indexed   = SchemaProps{Indexed: true}
	Ranked    = SchemaProps{Ranked: true}
)

// SchemaAttr is the stable positional identifier of a schema attribute.
type SchemaAttr uint16

const (
	minSchemaAttr SchemaAttr = 0
	maxSchemaAttr SchemaAttr = 0xffff
)

// MinSchemaAttr and MaxSchemaAttr bound the legal range of a SchemaAttr.
func MinSchemaAttr() SchemaAttr { return minSchemaAttr }
func MaxSchemaAttr() SchemaAttr { return maxSchemaAttr }

// Next returns attr+1 and false once the range is exhausted.
func (a SchemaAttr) Next() (SchemaAttr, bool) {
	if a == maxSchemaAttr {
		return 0, false
	}
	return a + 1, true
}

// Prev returns attr-1 and false if a is already zero.
func (a SchemaAttr) Prev() (SchemaAttr, bool) {
	if a == 0 {
		return 0, false
	}
	return a - 1, true
}

func (a SchemaAttr) String() string {
	return fmt.Sprintf("%d", uint16(a))
}

type schemaAttribute struct {
	name  string
	props SchemaProps
}

// SchemaBuilder accumulates attributes (in registration order) before being
// frozen into an immutable Schema.
type SchemaBuilder struct {
	identifier string
	order      []string
	byName     map[string]int
	attrs      []schemaAttribute
}

// NewSchemaBuilder starts a builder whose identifier attribute is named
// identifier; that attribute does not need to be registered with
// NewAttribute separately, its name is only recorded for lookups such as
// Schema.IdentifierName.
func NewSchemaBuilder(identifier string) *SchemaBuilder {
	return &SchemaBuilder{
		identifier: identifier,
		byName:     make(map[string]int),
	}
}

// NewAttribute registers name with props and returns its SchemaAttr.
// Registering the same name twice panics: a schema under construction is a
// build-time artifact, not a runtime merge target, and a caller trying to
// add a duplicate field has a bug the builder should surface immediately
// rather than silently overwrite.
func (b *SchemaBuilder) NewAttribute(name string, props SchemaProps) SchemaAttr {
	if _, exists := b.byName[name]; exists {
		panic(fmt.Sprintf("blaze: attribute %q already registered", name))
	}
	pos := len(b.attrs)
	b.byName[name] = pos
	b.order = append(b.order, name)
	b.attrs = append(b.attrs, schemaAttribute{name: name, props: props})
	return SchemaAttr(pos)
}

// Build freezes the builder into an immutable Schema.
func (b *SchemaBuilder) Build() Schema {
	attrs := make(map[string]SchemaAttr, len(b.attrs))
	props := make([]schemaAttribute, len(b.attrs))
	copy(props, b.attrs)
	for i, a := range props {
		attrs[a.name] = SchemaAttr(i)
	}
	return Schema{
		identifier:  b.identifier,
		attrsByName: attrs,
		props:       props,
	}
}

// Schema is an immutable, positionally-ordered attribute catalogue.
type Schema struct {
	identifier  string
	attrsByName map[string]SchemaAttr
	props       []schemaAttribute
}

// Props returns the SchemaProps registered for attr.
func (s Schema) Props(attr SchemaAttr) SchemaProps {
	return s.props[attr].props
}

// IdentifierName returns the name of the document-identifier attribute.
func (s Schema) IdentifierName() string {
	return s.identifier
}

// Attribute looks up the SchemaAttr registered for name.
func (s Schema) Attribute(name string) (SchemaAttr, bool) {
	a, ok := s.attrsByName[name]
	return a, ok
}

// AttributeName returns the name registered for attr.
func (s Schema) AttributeName(attr SchemaAttr) string {
	return s.props[attr].name
}

// Len returns the number of registered attributes.
func (s Schema) Len() int {
	return len(s.props)
}

// Iter calls fn for every (name, attr, props) triple in positional order.
func (s Schema) Iter(fn func(name string, attr SchemaAttr, props SchemaProps)) {
	for i, a := range s.props {
		fn(a.name, SchemaAttr(i), a.props)
	}
}

func (s Schema) toBuilder() *SchemaBuilder {
	b := NewSchemaBuilder(s.identifier)
	for _, a := range s.props {
		b.NewAttribute(a.name, a.props)
	}
	return b
}

// DiffKind distinguishes the five ways one schema can differ from another.
type DiffKind int

const (
	DiffIdentChange DiffKind = iota
	DiffAttrMove
	DiffAttrPropsChange
	DiffNewAttr
	DiffRemovedAttr
)

// Diff is a single reported difference between two schemas, produced by
// DiffSchemas. Only the fields relevant to Kind are populated.
type Diff struct {
	Kind DiffKind
	Name string

	OldIdentifier string
	NewIdentifier string

	OldPosition int
	NewPosition int

	OldProps SchemaProps
	NewProps SchemaProps
}

// DiffSchemas compares old against new and reports every difference, in
// this fixed order: an identifier change (if any), then for every attribute
// present in old, its position move and/or props change (if any) or its
// removal, then finally every attribute present in new but absent from old.
//
// This is the exact legality surface UpdateSchema checks before accepting a
// schema change: everything other than an AttrPropsChange is rejected.
func DiffSchemas(old, new Schema) []Diff {
	var diffs []Diff

	if old.identifier != new.identifier {
		diffs = append(diffs, Diff{
			Kind:          DiffIdentChange,
			OldIdentifier: old.identifier,
			NewIdentifier: new.identifier,
		})
	}

	for pos, a := range old.props {
		npos, ok := new.attrsByName[a.name]
		if !ok {
			diffs = append(diffs, Diff{Kind: DiffRemovedAttr, Name: a.name})
			continue
		}
		nprops := new.props[npos].props
		if pos != int(npos) {
			diffs = append(diffs, Diff{
				Kind:        DiffAttrMove,
				Name:        a.name,
				OldPosition: pos,
				NewPosition: int(npos),
			})
		}
		if a.props != nprops {
			diffs = append(diffs, Diff{
				Kind:     DiffAttrPropsChange,
				Name:     a.name,
				OldProps: a.props,
				NewProps: nprops,
			})
		}
	}

	for pos, a := range new.props {
		if _, ok := old.attrsByName[a.name]; !ok {
			diffs = append(diffs, Diff{
				Kind:        DiffNewAttr,
				Name:        a.name,
				NewPosition: pos,
				NewProps:    a.props,
			})
		}
	}

	return diffs
}
