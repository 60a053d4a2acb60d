// Package hydrator transfers incoming JSON:API resources onto records.
//
// A Hydrator is configured once with the attribute and relationship keys
// it may write, the attributes that hold dates, and optional per-key
// handlers. It then fills scalar fields through a KeyMap and Deserializer,
// and associates, dissociates or syncs relation slots against a
// record.Store.
//
// Hydration works on one record at a time. Callers own the enclosing
// transaction and must not hydrate the same record concurrently.
package hydrator

import (
	"context"
	"time"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/mickamy/jsonapi-hydrator/internal/naming"
	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/record"
)

// Config lists what a Hydrator may write.
type Config struct {
	// Attributes are the resource attributes transferred to the record.
	// Positional keys are converted with Naming; explicit pairs are used
	// as given.
	Attributes []Key
	// Dates are resource attribute keys holding timestamps.
	Dates []string
	// Relationships are the resource relationships hydrated generically.
	// Positional keys resolve to lowerCamel relation names.
	Relationships []Key
	// Naming is the record field convention. The zero value is Camel.
	Naming naming.Convention
}

// RelationshipHandler owns the hydration of one relationship key.
type RelationshipHandler interface {
	HydrateRelationship(ctx context.Context, rel jsonapi.Relationship, rec record.Record) error
}

// RelationshipHandlerFunc adapts a function to RelationshipHandler.
type RelationshipHandlerFunc func(ctx context.Context, rel jsonapi.Relationship, rec record.Record) error

func (f RelationshipHandlerFunc) HydrateRelationship(ctx context.Context, rel jsonapi.Relationship, rec record.Record) error {
	return f(ctx, rel, rec)
}

// RelatedHandler owns the related hydration of one relationship key. It
// returns records the caller should persist after the primary record.
type RelatedHandler interface {
	HydrateRelated(ctx context.Context, rel jsonapi.Relationship, rec record.Record) ([]record.Record, error)
}

// RelatedHandlerFunc adapts a function to RelatedHandler.
type RelatedHandlerFunc func(ctx context.Context, rel jsonapi.Relationship, rec record.Record) ([]record.Record, error)

func (f RelatedHandlerFunc) HydrateRelated(ctx context.Context, rel jsonapi.Relationship, rec record.Record) ([]record.Record, error) {
	return f(ctx, rel, rec)
}

// RelatedHook runs before or after related hydration.
type RelatedHook func(ctx context.Context, resource *jsonapi.Resource, rec record.Record) ([]record.Record, error)

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithRelationshipHandler registers h for the relationship key. It replaces
// the generic to-one and to-many strategies for that key.
func WithRelationshipHandler(key string, h RelationshipHandler) Option {
	return func(hy *Hydrator) { hy.relationshipHandlers[key] = h }
}

// WithRelatedHandler registers h for related hydration of the key.
func WithRelatedHandler(key string, h RelatedHandler) Option {
	return func(hy *Hydrator) { hy.relatedHandlers[key] = h }
}

// WithBeforeRelated sets the hook run first by HydrateRelated.
func WithBeforeRelated(fn RelatedHook) Option {
	return func(hy *Hydrator) { hy.beforeRelated = fn }
}

// WithAfterRelated sets the hook run last by HydrateRelated.
func WithAfterRelated(fn RelatedHook) Option {
	return func(hy *Hydrator) { hy.afterRelated = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(hy *Hydrator) { hy.log = l }
}

// WithLocation sets the zone used for date attributes without one.
func WithLocation(loc *time.Location) Option {
	return func(hy *Hydrator) { hy.loc = loc }
}

// Hydrator hydrates resources onto records.
type Hydrator struct {
	store         record.Store
	attributes    *KeyMap
	relationships *KeyMap
	deserializer  *Deserializer

	relationshipHandlers map[string]RelationshipHandler
	relatedHandlers      map[string]RelatedHandler
	beforeRelated        RelatedHook
	afterRelated         RelatedHook

	loc *time.Location
	log logger.Logger
}

// New builds a Hydrator. Key tables are normalized here, once.
func New(store record.Store, cfg Config, opts ...Option) (*Hydrator, error) {
	attrs, err := NewKeyMap(cfg.Attributes, cfg.Naming.Apply)
	if err != nil {
		return nil, err
	}
	rels, err := NewKeyMap(cfg.Relationships, naming.Camel.Apply)
	if err != nil {
		return nil, err
	}

	h := &Hydrator{
		store:                store,
		attributes:           attrs,
		relationships:        rels,
		relationshipHandlers: map[string]RelationshipHandler{},
		relatedHandlers:      map[string]RelatedHandler{},
		log:                  logger.NewLogger().Child("hydrator"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.deserializer = NewDeserializer(cfg.Dates, h.loc)
	return h, nil
}

// Attributes returns the attribute key table.
func (h *Hydrator) Attributes() *KeyMap { return h.attributes }

// Relationships returns the relationship key table.
func (h *Hydrator) Relationships() *KeyMap { return h.relationships }

// Hydrate fills the record's attributes, then hydrates its relationships.
// To-many relationships are left to HydrateRelated.
func (h *Hydrator) Hydrate(ctx context.Context, resource *jsonapi.Resource, rec record.Record) error {
	if err := h.HydrateAttributes(resource, rec); err != nil {
		return err
	}
	return h.HydrateRelationships(ctx, resource, rec)
}

// HydrateAttributes transfers every configured attribute present on the
// resource to the record with a single Fill. Nothing is written when any
// value fails to deserialize.
func (h *Hydrator) HydrateAttributes(resource *jsonapi.Resource, rec record.Record) error {
	data := make(map[string]any)
	for _, k := range h.attributes.entries {
		v, ok := resource.Attribute(k.Resource)
		if !ok {
			continue
		}
		nv, err := h.deserializer.Deserialize(v, k.Resource)
		if err != nil {
			return err
		}
		data[k.Record] = nv
	}
	rec.Fill(data)
	return nil
}

// HydrateRelationships runs registered handlers and hydrates to-one
// relationships whose slot is single-valued. Other relationships are
// skipped.
func (h *Hydrator) HydrateRelationships(ctx context.Context, resource *jsonapi.Resource, rec record.Record) error {
	for _, key := range resource.RelationshipKeys() {
		rel := resource.Relationships[key]

		if hd, ok := h.relationshipHandlers[key]; ok {
			if err := hd.HydrateRelationship(ctx, rel, rec); err != nil {
				return err
			}
			continue
		}

		if rel.IsToOne() {
			if _, err := h.hydrateBelongsTo(ctx, key, rel, rec); err != nil {
				return err
			}
		}
	}
	return nil
}
