package jsonapi

// Identifier is a resource identifier object: {"type": ..., "id": ...}.
type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (i Identifier) String() string {
	return i.Type + ":" + i.ID
}

// IDs returns the id member of each identifier, in order.
func IDs(ids []Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.ID
	}
	return out
}
