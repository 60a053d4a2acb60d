package hydrator

import (
	"errors"
	"fmt"
)

// Key maps a resource-facing key to a record-facing key. An empty Record
// means the record key is derived from Resource by a naming convention.
type Key struct {
	Resource string
	Record   string
}

// Keys returns positional keys whose record keys are derived.
func Keys(resource ...string) []Key {
	keys := make([]Key, len(resource))
	for i, r := range resource {
		keys[i] = Key{Resource: r}
	}
	return keys
}

// Map returns an explicit key pair. No convention is applied to record.
func Map(resource, record string) Key {
	return Key{Resource: resource, Record: record}
}

// KeyMap is a normalized, read-only mapping table built once from
// configuration.
type KeyMap struct {
	entries []Key
	index   map[string]string
}

// NewKeyMap normalizes keys. derive produces the record key of positional
// entries. A resource key configured twice is an error.
func NewKeyMap(keys []Key, derive func(string) string) (*KeyMap, error) {
	m := &KeyMap{
		entries: make([]Key, 0, len(keys)),
		index:   make(map[string]string, len(keys)),
	}
	for _, k := range keys {
		if k.Resource == "" {
			return nil, errors.New("hydrator: empty resource key")
		}
		if _, dup := m.index[k.Resource]; dup {
			return nil, fmt.Errorf("hydrator: resource key %q configured twice", k.Resource)
		}
		if k.Record == "" {
			k.Record = derive(k.Resource)
		}
		m.entries = append(m.entries, k)
		m.index[k.Resource] = k.Record
	}
	return m, nil
}

// Resolve returns the record key for a resource key.
func (m *KeyMap) Resolve(resourceKey string) (string, bool) {
	k, ok := m.index[resourceKey]
	return k, ok
}

// Entries returns the normalized pairs in configuration order.
func (m *KeyMap) Entries() []Key {
	return append([]Key(nil), m.entries...)
}
