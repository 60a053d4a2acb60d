package jsonapi

// Kind tells which shape a Relationship carries.
type Kind int

const (
	KindToOne Kind = iota + 1
	KindToMany
)

func (k Kind) String() string {
	switch k {
	case KindToOne:
		return "to-one"
	case KindToMany:
		return "to-many"
	default:
		return "unknown"
	}
}

// Relationship is the data member of an incoming relationship object.
// It is either to-one (an identifier or an explicit null) or to-many
// (a possibly empty list of identifiers). Check Kind before reading
// identifiers: the accessors for the other shape return zero values.
type Relationship struct {
	kind Kind
	one  *Identifier
	many []Identifier
}

// ToOne returns a to-one relationship. A nil id is an explicit null,
// which clears the relation.
func ToOne(id *Identifier) Relationship {
	if id != nil {
		cp := *id
		id = &cp
	}
	return Relationship{kind: KindToOne, one: id}
}

// ToMany returns a to-many relationship. No ids clears the relation.
func ToMany(ids ...Identifier) Relationship {
	return Relationship{kind: KindToMany, many: append([]Identifier{}, ids...)}
}

func (r Relationship) Kind() Kind     { return r.kind }
func (r Relationship) IsToOne() bool  { return r.kind == KindToOne }
func (r Relationship) IsToMany() bool { return r.kind == KindToMany }

// HasIdentifier reports whether a to-one relationship references a resource.
func (r Relationship) HasIdentifier() bool {
	return r.kind == KindToOne && r.one != nil
}

// Identifier returns the referenced resource of a to-one relationship.
func (r Relationship) Identifier() (Identifier, bool) {
	if !r.HasIdentifier() {
		return Identifier{}, false
	}
	return *r.one, true
}

// Identifiers returns the referenced resources of a to-many relationship.
func (r Relationship) Identifiers() []Identifier {
	if r.kind != KindToMany {
		return nil
	}
	return append([]Identifier{}, r.many...)
}
