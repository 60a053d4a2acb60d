package hydrator_test

import (
	"context"
	"testing"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/jsonapi-hydrator/hydrator"
	"github.com/mickamy/jsonapi-hydrator/jsonapi"
	"github.com/mickamy/jsonapi-hydrator/record"
)

// countingStore counts round-trips to the wrapped store.
type countingStore struct {
	record.Store
	finds     int
	findManys int
}

func (s *countingStore) Find(ctx context.Context, id jsonapi.Identifier) (any, error) {
	s.finds++
	return s.Store.Find(ctx, id)
}

func (s *countingStore) FindMany(ctx context.Context, ids []jsonapi.Identifier) (map[jsonapi.Identifier]any, error) {
	s.findManys++
	return s.Store.FindMany(ctx, ids)
}

type fixture struct {
	store *countingStore
	mem   *record.MemoryStore
	post  *record.Model
	users map[string]*record.Model
	tags  map[string]*record.Model
}

func newFixture() *fixture {
	f := &fixture{
		post:  record.NewModel("posts", "1").WithBelongsTo("author").WithBelongsToMany("tags"),
		users: map[string]*record.Model{},
		tags:  map[string]*record.Model{},
	}
	f.mem = record.NewMemoryStore()
	for _, id := range []string{"1", "2"} {
		f.users[id] = record.NewModel("users", id)
		f.mem.Add(f.users[id])
	}
	for _, id := range []string{"a", "b", "c"} {
		f.tags[id] = record.NewModel("tags", id)
		f.mem.Add(f.tags[id])
	}
	f.store = &countingStore{Store: f.mem}
	return f
}

func (f *fixture) author() record.BelongsTo {
	r, _ := f.post.Relation("author")
	return r.(record.BelongsTo)
}

func (f *fixture) tagSlot() record.BelongsToMany {
	r, _ := f.post.Relation("tags")
	return r.(record.BelongsToMany)
}

func newHydrator(t *testing.T, store record.Store, cfg hydrator.Config, opts ...hydrator.Option) *hydrator.Hydrator {
	t.Helper()

	opts = append([]hydrator.Option{hydrator.WithLogger(logger.NOP)}, opts...)
	h, err := hydrator.New(store, cfg, opts...)
	require.NoError(t, err)
	return h
}

func user(id string) *jsonapi.Identifier {
	return &jsonapi.Identifier{Type: "users", ID: id}
}

func tags(ids ...string) jsonapi.Relationship {
	out := make([]jsonapi.Identifier, len(ids))
	for i, id := range ids {
		out[i] = jsonapi.Identifier{Type: "tags", ID: id}
	}
	return jsonapi.ToMany(out...)
}

func memberIDs(slot record.BelongsToMany) []string {
	members := slot.Members()
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Identifier().ID
	}
	return out
}

var postRelationships = hydrator.Config{
	Relationships: hydrator.Keys("author", "tags"),
}
