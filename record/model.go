package record

import (
	"context"
	"maps"

	"github.com/samber/lo"

	"github.com/mickamy/jsonapi-hydrator/internal/naming"
	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

// Model is a map-backed Record. It is useful for tests and for callers
// that keep records in memory.
type Model struct {
	typ       string
	id        string
	fields    map[string]any
	relations map[string]Relation
}

// NewModel returns an empty model.
func NewModel(typ, id string) *Model {
	return &Model{
		typ:       typ,
		id:        id,
		fields:    map[string]any{},
		relations: map[string]Relation{},
	}
}

// WithBelongsTo adds a single-valued relation slot. Associating a record
// also sets the foreign key field (naming.ForeignKey) to its id.
func (m *Model) WithBelongsTo(name string) *Model {
	m.relations[name] = &modelBelongsTo{owner: m, name: name}
	return m
}

// WithBelongsToMany adds a multi-valued relation slot.
func (m *Model) WithBelongsToMany(name string) *Model {
	m.relations[name] = &modelBelongsToMany{name: name}
	return m
}

// WithRelation adds an arbitrary relation slot.
func (m *Model) WithRelation(r Relation) *Model {
	m.relations[r.Name()] = r
	return m
}

func (m *Model) Identifier() jsonapi.Identifier {
	return jsonapi.Identifier{Type: m.typ, ID: m.id}
}

func (m *Model) Fill(values map[string]any) {
	maps.Copy(m.fields, values)
}

func (m *Model) Get(field string) (any, bool) {
	v, ok := m.fields[field]
	return v, ok
}

// Fields returns a copy of all fields.
func (m *Model) Fields() map[string]any {
	return maps.Clone(m.fields)
}

func (m *Model) Relation(name string) (Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

type modelBelongsTo struct {
	owner   *Model
	name    string
	related Record
}

func (r *modelBelongsTo) Name() string { return r.name }

func (r *modelBelongsTo) Associate(related Record) {
	r.related = related
	r.owner.fields[naming.ForeignKey(r.name)] = related.Identifier().ID
}

func (r *modelBelongsTo) Dissociate() {
	r.related = nil
	r.owner.fields[naming.ForeignKey(r.name)] = nil
}

func (r *modelBelongsTo) Related() Record { return r.related }

type modelBelongsToMany struct {
	name    string
	members []Record
}

func (r *modelBelongsToMany) Name() string { return r.name }

func (r *modelBelongsToMany) Sync(_ context.Context, related []Record) error {
	r.members = lo.UniqBy(related, func(rec Record) jsonapi.Identifier {
		return rec.Identifier()
	})
	return nil
}

func (r *modelBelongsToMany) Members() []Record {
	return append([]Record(nil), r.members...)
}
