// Package record defines the persistent side of hydration: records with
// named fields and relation slots, and the store they are looked up in.
package record

import (
	"context"
	"errors"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

// ErrNotFound is returned by a Store when an identifier does not resolve.
var ErrNotFound = errors.New("record: not found")

// Record is an addressable entity with scalar fields and relation slots.
type Record interface {
	Identifier() jsonapi.Identifier
	// Fill assigns the given fields. Keys are record field names.
	Fill(values map[string]any)
	Get(field string) (any, bool)
	// Relation returns the relation slot with the given accessor name.
	Relation(name string) (Relation, bool)
}

// Relation is a named relation slot on a record. Concrete slots implement
// BelongsTo or BelongsToMany; any other kind is not hydratable.
type Relation interface {
	Name() string
}

// BelongsTo is a single-valued relation slot.
type BelongsTo interface {
	Relation
	Associate(related Record)
	Dissociate()
	// Related returns the associated record, or nil.
	Related() Record
}

// BelongsToMany is a multi-valued relation slot.
type BelongsToMany interface {
	Relation
	// Sync replaces the membership so it equals exactly related. Links that
	// are missing are added and links not in related are removed.
	Sync(ctx context.Context, related []Record) error
	Members() []Record
}

// Store resolves resource identifiers to records. Values are returned as
// any: callers must check that what came back is a Record.
type Store interface {
	// Find returns the value stored for id, or ErrNotFound.
	Find(ctx context.Context, id jsonapi.Identifier) (any, error)
	// FindMany resolves every id in one round-trip. Missing ids are absent
	// from the result; it is not an error for FindMany.
	FindMany(ctx context.Context, ids []jsonapi.Identifier) (map[jsonapi.Identifier]any, error)
}
