package hydrator

import (
	"fmt"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

// ValidationError reports an attribute value that could not be
// deserialized, such as an unparseable date.
type ValidationError struct {
	Key   string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("hydrator: invalid value for attribute %q: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a relationship referencing a resource the store
// does not have. It unwraps to record.ErrNotFound.
type NotFoundError struct {
	Relationship string
	Identifier   jsonapi.Identifier
	Err          error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hydrator: relationship %q: related resource %s not found", e.Relationship, e.Identifier)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// TypeMismatchError reports a store returning something other than a
// record.Record. It is a programming error in the store.
type TypeMismatchError struct {
	Relationship string
	Identifier   jsonapi.Identifier
	Value        any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("hydrator: relationship %q: expecting related resource %s to be a record, got %T",
		e.Relationship, e.Identifier, e.Value)
}

// UnhydratableRelationshipError reports a relationship no strategy can
// apply: no handler is registered, the key is not configured, or the
// record's relation slot does not match the relationship's shape.
type UnhydratableRelationshipError struct {
	Key string
}

func (e *UnhydratableRelationshipError) Error() string {
	return "Cannot hydrate relationship: " + e.Key
}
