// Package scope holds reusable query fragments for orm.Query: filters,
// ordering and JSON:API style pagination.
package scope

import "strings"

// Applier is implemented by query builders to receive scope fragments.
// It lives here so that orm can import scope without a cycle.
type Applier interface {
	ApplyWhere(clause string, args []any)
	ApplyOrderBy(clause string)
	ApplyLimit(n int)
	ApplyOffset(n int)
}

type scopeKind int

const (
	kindWhere scopeKind = iota
	kindOrderBy
	kindPage
)

// Scope is a single immutable query fragment.
type Scope struct {
	kind   scopeKind
	clause string
	args   []any
	n      int
	size   int
}

// Apply dispatches this Scope to the given Applier.
func (s Scope) Apply(a Applier) {
	switch s.kind {
	case kindWhere:
		a.ApplyWhere(s.clause, s.args)
	case kindOrderBy:
		a.ApplyOrderBy(s.clause)
	case kindPage:
		a.ApplyLimit(s.size)
		a.ApplyOffset((s.n - 1) * s.size)
	}
}

// Where returns a Scope that adds a WHERE clause fragment.
//
//	scope.Where("resource_type = ?", "downloads")
func Where(clause string, args ...any) Scope {
	return Scope{kind: kindWhere, clause: clause, args: args}
}

// OrderBy returns a Scope that adds an ORDER BY term.
//
//	scope.OrderBy("created_at DESC")
func OrderBy(clause string) Scope {
	return Scope{kind: kindOrderBy, clause: clause}
}

// Page returns a Scope selecting the 1-based page number of the given
// size, as in page[number] and page[size]. A number below 1 is page 1.
func Page(number, size int) Scope {
	if number < 1 {
		number = 1
	}
	return Scope{kind: kindPage, n: number, size: size}
}

// In returns a WHERE scope with an IN clause, expanding the slice into
// individual placeholders. An empty slice matches nothing.
//
//	scope.In("id", []string{"1", "2"})  // → WHERE id IN (?, ?)
func In[T any](column string, values []T) Scope {
	if len(values) == 0 {
		return Where("1 = 0")
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return Where(column+" IN ("+ph+")", args...)
}

// Scopes is a named slice of Scope, useful for conditionally building
// up a set of scopes.
type Scopes []Scope

// Append adds scopes and returns a new Scopes. The receiver is not modified.
func (ss Scopes) Append(scopes ...Scope) Scopes {
	return append(append(Scopes(nil), ss...), scopes...)
}
