package orm

import "github.com/mickamy/jsonapi-hydrator/internal/naming"

// TableNamer can be implemented by stored types to override the table
// name derived from their resource type.
type TableNamer interface {
	TableName() string
}

// ResolveTableName returns the table holding resources of resourceType
// stored as T. A TableNamer on T (value or pointer receiver) wins;
// otherwise the pluralized snake_case resource type is used.
func ResolveTableName[T any](resourceType string) string {
	var zero T
	if tn, ok := any(&zero).(TableNamer); ok {
		return tn.TableName()
	}
	return naming.TableName(resourceType)
}
