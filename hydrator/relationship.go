package hydrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/samber/lo"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/record"
)

// HydrateRelationship applies one relationship to the record. The first
// matching strategy wins:
//
//  1. a RelationshipHandler registered for key;
//  2. to-one onto a record.BelongsTo slot: associate, or dissociate on null;
//  3. to-many onto a record.BelongsToMany slot: sync to exactly the given set.
//
// Anything else is an *UnhydratableRelationshipError. The slot is left as
// it was when an error is returned.
func (h *Hydrator) HydrateRelationship(ctx context.Context, key string, rel jsonapi.Relationship, rec record.Record) error {
	if hd, ok := h.relationshipHandlers[key]; ok {
		return hd.HydrateRelationship(ctx, rel, rec)
	}

	if rel.IsToOne() {
		applied, err := h.hydrateBelongsTo(ctx, key, rel, rec)
		if err != nil || applied {
			return err
		}
	}

	if rel.IsToMany() {
		applied, err := h.syncBelongsToMany(ctx, key, rel, rec)
		if err != nil || applied {
			return err
		}
	}

	return &UnhydratableRelationshipError{Key: key}
}

// relation returns the record's slot for a resource relationship key, or
// nil when the key is not configured or the record has no such slot.
func (h *Hydrator) relation(key string, rec record.Record) record.Relation {
	name, ok := h.relationships.Resolve(key)
	if !ok {
		return nil
	}
	r, ok := rec.Relation(name)
	if !ok {
		return nil
	}
	return r
}

func (h *Hydrator) hydrateBelongsTo(ctx context.Context, key string, rel jsonapi.Relationship, rec record.Record) (bool, error) {
	slot, ok := h.relation(key, rec).(record.BelongsTo)
	if !ok {
		return false, nil
	}

	id, ok := rel.Identifier()
	if !ok {
		slot.Dissociate()
		h.log.Debugn("dissociated relationship", logger.NewStringField("relationship", key))
		return true, nil
	}

	related, err := h.findRelated(ctx, key, id)
	if err != nil {
		return false, err
	}
	slot.Associate(related)
	h.log.Debugn("associated relationship",
		logger.NewStringField("relationship", key),
		logger.NewStringField("related", id.String()),
	)
	return true, nil
}

func (h *Hydrator) syncBelongsToMany(ctx context.Context, key string, rel jsonapi.Relationship, rec record.Record) (bool, error) {
	slot, ok := h.relation(key, rec).(record.BelongsToMany)
	if !ok {
		return false, nil
	}

	related, err := h.findRelatedMany(ctx, key, rel.Identifiers())
	if err != nil {
		return false, err
	}
	if err := slot.Sync(ctx, related); err != nil {
		return false, fmt.Errorf("hydrator: sync relationship %q: %w", key, err)
	}
	h.log.Debugn("synced relationship",
		logger.NewStringField("relationship", key),
		logger.NewIntField("members", int64(len(related))),
	)
	return true, nil
}

func (h *Hydrator) findRelated(ctx context.Context, key string, id jsonapi.Identifier) (record.Record, error) {
	v, err := h.store.Find(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return nil, &NotFoundError{Relationship: key, Identifier: id, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("hydrator: find %s: %w", id, err)
	}
	return asRecord(key, id, v)
}

// findRelatedMany resolves ids with a single store round-trip, keeping the
// order of first appearance.
func (h *Hydrator) findRelatedMany(ctx context.Context, key string, ids []jsonapi.Identifier) ([]record.Record, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := h.store.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrator: find %d related resources: %w", len(ids), err)
	}

	out := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		v, ok := found[id]
		if !ok {
			return nil, &NotFoundError{Relationship: key, Identifier: id, Err: record.ErrNotFound}
		}
		r, err := asRecord(key, id, v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func asRecord(key string, id jsonapi.Identifier, v any) (record.Record, error) {
	r, ok := v.(record.Record)
	if !ok || lo.IsNil(r) {
		return nil, &TypeMismatchError{Relationship: key, Identifier: id, Value: v}
	}
	return r, nil
}
