package sqlstore

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/samber/lo"

	"github.com/mickamy/jsonapi-hydrator/internal/naming"
	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/orm"
	"github.com/mickamy/jsonapi-hydrator/record"
)

// Row is a record stored as one table row. Field names are column names,
// so hydrators writing to rows should use the snake_case convention.
type Row struct {
	typ       *Type
	id        string
	persisted bool
	fields    map[string]any
	relations map[string]record.Relation
}

func (r *Row) Identifier() jsonapi.Identifier {
	return jsonapi.Identifier{Type: r.typ.Name, ID: r.id}
}

// Fill assigns column values. The primary key column is ignored.
func (r *Row) Fill(values map[string]any) {
	for k, v := range values {
		if k == pkColumn {
			continue
		}
		r.fields[k] = v
	}
}

func (r *Row) Get(field string) (any, bool) {
	if field == pkColumn {
		return r.id, true
	}
	v, ok := r.fields[field]
	return v, ok
}

// Fields returns a copy of the column values, primary key excluded.
func (r *Row) Fields() map[string]any {
	return maps.Clone(r.fields)
}

func (r *Row) Relation(name string) (record.Relation, bool) {
	rel, ok := r.relations[name]
	return rel, ok
}

// Persisted reports whether the row was loaded from or saved to the table.
func (r *Row) Persisted() bool { return r.persisted }

// columnValues lists the primary key first, then the other columns in
// name order.
func (r *Row) columnValues() ([]string, []any) {
	cols := slices.Sorted(maps.Keys(r.fields))
	vals := make([]any, 0, len(cols)+1)
	vals = append(vals, r.id)
	for _, c := range cols {
		vals = append(vals, r.fields[c])
	}
	return append([]string{pkColumn}, cols...), vals
}

type belongsTo struct {
	owner   *Row
	name    string
	related record.Record
}

func (b *belongsTo) Name() string { return b.name }

// Associate points the foreign key column at related.
func (b *belongsTo) Associate(related record.Record) {
	b.related = related
	b.owner.fields[naming.ForeignKey(b.name)] = related.Identifier().ID
}

func (b *belongsTo) Dissociate() {
	b.related = nil
	b.owner.fields[naming.ForeignKey(b.name)] = nil
}

func (b *belongsTo) Related() record.Record { return b.related }

// belongsToMany keeps membership in a join table named after both tables.
// Sync writes through immediately, so the owning row must be saved first.
type belongsToMany struct {
	store   *Store
	owner   *Row
	name    string
	target  string
	members []record.Record
}

func (b *belongsToMany) Name() string { return b.name }

func (b *belongsToMany) Sync(ctx context.Context, related []record.Record) error {
	if !b.owner.persisted {
		return fmt.Errorf("sqlstore: sync %s on unsaved %s", b.name, b.owner.Identifier())
	}
	related = lo.UniqBy(related, func(r record.Record) jsonapi.Identifier { return r.Identifier() })
	ids := lo.Map(related, func(r record.Record, _ int) string { return r.Identifier().ID })

	table := naming.JoinTable(b.owner.typ.table(), naming.TableName(b.target))
	attached, detached, err := orm.SyncJoinTable(ctx, b.store.db,
		table, naming.ForeignKey(b.owner.typ.Name), naming.ForeignKey(b.target), b.owner.id, ids)
	if err != nil {
		return fmt.Errorf("sqlstore: sync %s: %w", b.name, err)
	}
	b.store.log.Debugn("synced relation",
		logger.NewStringField("relation", b.name),
		logger.NewStringField("table", table),
		logger.NewIntField("attached", int64(len(attached))),
		logger.NewIntField("detached", int64(len(detached))),
	)
	b.members = related
	return nil
}

func (b *belongsToMany) Members() []record.Record {
	return append([]record.Record(nil), b.members...)
}
