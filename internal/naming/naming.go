// Package naming converts resource-facing keys and types into record-facing
// field, relation and table names.
package naming

import (
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Convention is the casing applied to a resource key when no explicit
// record key is configured for it.
type Convention int

const (
	// Camel derives lowerCamel record keys: "published-at" → "publishedAt".
	Camel Convention = iota
	// Snake derives snake_case record keys: "published-at" → "published_at".
	Snake
)

// Apply converts key according to the convention.
func (c Convention) Apply(key string) string {
	if c == Snake {
		return strcase.ToSnake(key)
	}
	return strcase.ToLowerCamel(key)
}

func (c Convention) String() string {
	if c == Snake {
		return "snake"
	}
	return "camel"
}

// TableName returns the table that stores resources of the given JSON:API
// type: "blog-posts" → "blog_posts", "person" → "people".
func TableName(resourceType string) string {
	return inflection.Plural(strcase.ToSnake(resourceType))
}

// ForeignKey returns the column holding a belongs-to reference for the
// given relation name: "author" → "author_id", "blogPost" → "blog_post_id".
func ForeignKey(relation string) string {
	return inflection.Singular(strcase.ToSnake(relation)) + "_id"
}

// JoinTable returns the pivot table for a many-to-many relation between two
// tables. Singular names are joined in alphabetical order:
// ("posts", "tags") → "post_tag".
func JoinTable(a, b string) string {
	names := []string{
		inflection.Singular(strcase.ToSnake(a)),
		inflection.Singular(strcase.ToSnake(b)),
	}
	sort.Strings(names)
	return names[0] + "_" + names[1]
}
