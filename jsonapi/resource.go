package jsonapi

// Resource is an incoming resource object.
type Resource struct {
	Type          string
	ID            string
	Attributes    map[string]any
	Relationships map[string]Relationship

	// relationship keys in document order
	order []string
}

// NewResource returns an empty resource of the given type and id.
func NewResource(typ, id string) *Resource {
	return &Resource{
		Type:          typ,
		ID:            id,
		Attributes:    map[string]any{},
		Relationships: map[string]Relationship{},
	}
}

// Identifier returns the resource's own identifier.
func (r *Resource) Identifier() Identifier {
	return Identifier{Type: r.Type, ID: r.ID}
}

// Attribute returns the attribute value for key and whether it was sent.
// A sent null reports (nil, true).
func (r *Resource) Attribute(key string) (any, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// SetRelationship adds or replaces a relationship, keeping the position of
// keys that already exist.
func (r *Resource) SetRelationship(key string, rel Relationship) *Resource {
	if r.Relationships == nil {
		r.Relationships = map[string]Relationship{}
	}
	if _, ok := r.Relationships[key]; !ok {
		r.order = append(r.order, key)
	}
	r.Relationships[key] = rel
	return r
}

// SetAttribute adds or replaces an attribute.
func (r *Resource) SetAttribute(key string, value any) *Resource {
	if r.Attributes == nil {
		r.Attributes = map[string]any{}
	}
	r.Attributes[key] = value
	return r
}

// RelationshipKeys returns the relationship keys in the order they appeared
// in the document. Keys added directly to the Relationships map follow, in
// no particular order.
func (r *Resource) RelationshipKeys() []string {
	keys := make([]string, 0, len(r.Relationships))
	seen := make(map[string]struct{}, len(r.order))
	for _, k := range r.order {
		if _, ok := r.Relationships[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	for k := range r.Relationships {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}
