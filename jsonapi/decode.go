package jsonapi

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is returned when a request body is not a usable
// JSON:API document.
var ErrInvalidDocument = errors.New("jsonapi: invalid document")

// DecodeResource reads the primary resource object of a document:
//
//	{"data": {"type": "posts", "id": "1", "attributes": {...}, "relationships": {...}}}
func DecodeResource(body []byte) (*Resource, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("%w: data must be a resource object", ErrInvalidDocument)
	}
	return decodeResource(data)
}

// DecodeRelationship reads the data member of a relationship document, as
// sent to a relationship endpoint:
//
//	{"data": {"type": "users", "id": "1"}}
//	{"data": [{"type": "tags", "id": "1"}]}
func DecodeRelationship(body []byte) (Relationship, error) {
	if !gjson.ValidBytes(body) {
		return Relationship{}, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	return decodeRelationship(gjson.ParseBytes(body))
}

func decodeResource(data gjson.Result) (*Resource, error) {
	typ := data.Get("type")
	if typ.Type != gjson.String || typ.Str == "" {
		return nil, fmt.Errorf("%w: resource type must be a non-empty string", ErrInvalidDocument)
	}
	id := data.Get("id")
	if id.Exists() && id.Type != gjson.String {
		return nil, fmt.Errorf("%w: resource id must be a string", ErrInvalidDocument)
	}
	r := NewResource(typ.Str, id.Str)

	if attrs := data.Get("attributes"); attrs.Exists() {
		if !attrs.IsObject() {
			return nil, fmt.Errorf("%w: attributes must be an object", ErrInvalidDocument)
		}
		attrs.ForEach(func(k, v gjson.Result) bool {
			r.Attributes[k.Str] = v.Value()
			return true
		})
	}

	rels := data.Get("relationships")
	if !rels.Exists() {
		return r, nil
	}
	if !rels.IsObject() {
		return nil, fmt.Errorf("%w: relationships must be an object", ErrInvalidDocument)
	}
	var err error
	rels.ForEach(func(k, v gjson.Result) bool {
		var rel Relationship
		if rel, err = decodeRelationship(v); err != nil {
			err = fmt.Errorf("relationship %q: %w", k.Str, err)
			return false
		}
		r.SetRelationship(k.Str, rel)
		return true
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeRelationship(obj gjson.Result) (Relationship, error) {
	data := obj.Get("data")
	switch {
	case !data.Exists():
		return Relationship{}, fmt.Errorf("%w: relationship data is required", ErrInvalidDocument)
	case data.Type == gjson.Null:
		return ToOne(nil), nil
	case data.IsArray():
		items := data.Array()
		ids := make([]Identifier, 0, len(items))
		for _, item := range items {
			id, err := decodeIdentifier(item)
			if err != nil {
				return Relationship{}, err
			}
			ids = append(ids, id)
		}
		return ToMany(ids...), nil
	case data.IsObject():
		id, err := decodeIdentifier(data)
		if err != nil {
			return Relationship{}, err
		}
		return ToOne(&id), nil
	default:
		return Relationship{}, fmt.Errorf("%w: relationship data must be null, an object or an array", ErrInvalidDocument)
	}
}

func decodeIdentifier(v gjson.Result) (Identifier, error) {
	if !v.IsObject() {
		return Identifier{}, fmt.Errorf("%w: resource identifier must be an object", ErrInvalidDocument)
	}
	typ, id := v.Get("type"), v.Get("id")
	if typ.Type != gjson.String || typ.Str == "" || id.Type != gjson.String || id.Str == "" {
		return Identifier{}, fmt.Errorf("%w: resource identifier needs string type and id", ErrInvalidDocument)
	}
	return Identifier{Type: typ.Str, ID: id.Str}, nil
}
