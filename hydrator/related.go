package hydrator

import (
	"context"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/record"
)

// HydrateRelated hydrates the relationships that can only be written once
// the primary record exists. It runs the before hook, then for each
// relationship in document order either its RelatedHandler or, for
// to-many relationships, the generic sync. To-one relationships without a
// handler are not touched here; Hydrate covers them. The after hook runs
// last.
//
// The returned records are those the hooks and handlers asked the caller
// to persist, in hook, relationship, hook order.
func (h *Hydrator) HydrateRelated(ctx context.Context, resource *jsonapi.Resource, rec record.Record) ([]record.Record, error) {
	var results []record.Record

	if h.beforeRelated != nil {
		r, err := h.beforeRelated(ctx, resource, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, r...)
	}

	for _, key := range resource.RelationshipKeys() {
		rel := resource.Relationships[key]

		if hd, ok := h.relatedHandlers[key]; ok {
			r, err := hd.HydrateRelated(ctx, rel, rec)
			if err != nil {
				return nil, err
			}
			results = append(results, r...)
			continue
		}

		if rel.IsToMany() {
			if _, err := h.syncBelongsToMany(ctx, key, rel, rec); err != nil {
				return nil, err
			}
		}
	}

	if h.afterRelated != nil {
		r, err := h.afterRelated(ctx, resource, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, r...)
	}

	return results, nil
}
