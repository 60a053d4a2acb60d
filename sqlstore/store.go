// Package sqlstore is a record.Store over SQL tables. Each JSON:API type
// maps to one table keyed by an "id" column; belongs-to relations are
// foreign key columns and belongs-to-many relations are join tables.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"
	"github.com/samber/lo"

	"github.com/mickamy/jsonapi-hydrator/internal/naming"
	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/orm"
	"github.com/mickamy/jsonapi-hydrator/record"
	"github.com/mickamy/jsonapi-hydrator/scope"
)

const pkColumn = "id"

// Type describes how resources of one JSON:API type are stored.
type Type struct {
	// Name is the JSON:API resource type.
	Name string
	// Table overrides naming.TableName(Name).
	Table string
	// BelongsTo lists relation names stored as foreign key columns.
	BelongsTo []string
	// BelongsToMany maps relation names to the related resource type.
	BelongsToMany map[string]string
}

func (t *Type) table() string {
	if t.Table != "" {
		return t.Table
	}
	return naming.TableName(t.Name)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store loads and saves Rows.
type Store struct {
	root  *orm.DB
	db    orm.Querier
	types map[string]*Type
	log   logger.Logger
}

// New returns a store for the given types.
func New(db *orm.DB, types []Type, opts ...Option) *Store {
	s := &Store{
		root:  db,
		db:    db,
		types: make(map[string]*Type, len(types)),
		log:   logger.NewLogger().Child("sqlstore"),
	}
	for _, t := range types {
		s.types[t.Name] = &t
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transaction runs fn with a store bound to one transaction. Rows loaded
// through the inner store sync their join tables inside it as well.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if _, inTx := s.db.(*orm.Tx); inTx {
		return fn(s)
	}
	return s.root.Transaction(ctx, func(tx *orm.Tx) error { //nolint:wrapcheck // caller's error
		inner := *s
		inner.db = tx
		return fn(&inner)
	})
}

// New returns an unsaved row of the given type.
func (s *Store) New(typ, id string) (*Row, error) {
	t, ok := s.types[typ]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unknown type %q", typ)
	}
	return s.newRow(t, id), nil
}

func (s *Store) newRow(t *Type, id string) *Row {
	r := &Row{
		typ:       t,
		id:        id,
		fields:    map[string]any{},
		relations: make(map[string]record.Relation, len(t.BelongsTo)+len(t.BelongsToMany)),
	}
	for _, name := range t.BelongsTo {
		r.relations[name] = &belongsTo{owner: r, name: name}
	}
	for name, target := range t.BelongsToMany {
		r.relations[name] = &belongsToMany{store: s, owner: r, name: name, target: target}
	}
	return r
}

func (s *Store) query(t *Type) *orm.Query[*Row] {
	return orm.NewQuery[*Row](s.db, t.table(), nil, pkColumn, s.scanRow(t), func(r **Row) ([]string, []any) {
		return (*r).columnValues()
	})
}

func (s *Store) scanRow(t *Type) orm.ScanFunc[*Row] {
	return func(rows *sql.Rows) (*Row, error) {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}

		r := s.newRow(t, "")
		r.persisted = true
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if col == pkColumn {
				r.id = fmt.Sprint(v)
				continue
			}
			r.fields[col] = v
		}
		return r, nil
	}
}

// Find loads the row identified by id.
func (s *Store) Find(ctx context.Context, id jsonapi.Identifier) (any, error) {
	t, ok := s.types[id.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %s", record.ErrNotFound, id)
	}
	row, err := s.query(t).Where(pkColumn+" = ?", id.ID).First(ctx)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", record.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find %s: %w", id, err)
	}
	return row, nil
}

// FindMany loads every id with one query per resource type. Unknown types
// and missing rows are left out of the result.
func (s *Store) FindMany(ctx context.Context, ids []jsonapi.Identifier) (map[jsonapi.Identifier]any, error) {
	out := make(map[jsonapi.Identifier]any, len(ids))
	byType := lo.GroupBy(lo.Uniq(ids), func(id jsonapi.Identifier) string { return id.Type })
	for typ, group := range byType {
		t, ok := s.types[typ]
		if !ok {
			continue
		}
		rows, err := s.query(t).Scopes(scope.In(pkColumn, jsonapi.IDs(group))).All(ctx)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: find %s: %w", typ, err)
		}
		for _, r := range rows {
			out[r.Identifier()] = r
		}
	}
	return out, nil
}

// Save inserts an unsaved row or updates a persisted one.
func (s *Store) Save(ctx context.Context, r *Row) error {
	q := s.query(r.typ)
	if !r.persisted {
		if err := q.Create(ctx, &r); err != nil {
			s.log.Errorn("insert row", logger.NewStringField("resource", r.Identifier().String()), obskit.Error(err))
			return fmt.Errorf("sqlstore: insert %s: %w", r.Identifier(), err)
		}
		r.persisted = true
		return nil
	}
	if len(r.fields) == 0 {
		return nil
	}
	n, err := q.Update(ctx, &r)
	if err != nil {
		s.log.Errorn("update row", logger.NewStringField("resource", r.Identifier().String()), obskit.Error(err))
		return fmt.Errorf("sqlstore: update %s: %w", r.Identifier(), err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", record.ErrNotFound, r.Identifier())
	}
	return nil
}

var _ record.Store = (*Store)(nil)
