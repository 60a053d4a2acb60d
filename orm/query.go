package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mickamy/jsonapi-hydrator/scope"
)

// ScanFunc scans a single row into T.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// ColumnValueFunc extracts column names and their values from a *T,
// primary key included.
type ColumnValueFunc[T any] func(t *T) (columns []string, values []any)

// Query represents a pending query against a single table.
// All builder methods return a new Query; the receiver is never modified.
type Query[T any] struct {
	db      Querier
	table   string
	columns []string
	pk      string
	scan    ScanFunc[T]
	colVals ColumnValueFunc[T]

	wheres   []whereClause
	orderBys []string
	limit    *int
	offset   *int
}

type whereClause struct {
	clause string
	args   []any
}

// NewQuery returns a query on table. A nil columns list selects "*".
// colVals may be nil for read-only queries.
func NewQuery[T any](
	db Querier,
	table string,
	columns []string,
	pk string,
	scan ScanFunc[T],
	colVals ColumnValueFunc[T],
) *Query[T] {
	return &Query[T]{
		db:      db,
		table:   table,
		columns: columns,
		pk:      pk,
		scan:    scan,
		colVals: colVals,
	}
}

// clone returns a shallow copy with slices copied to avoid aliasing.
func (q *Query[T]) clone() *Query[T] {
	q2 := *q
	q2.wheres = append([]whereClause(nil), q.wheres...)
	q2.orderBys = append([]string(nil), q.orderBys...)
	return &q2
}

// --- Builder methods ---

func (q *Query[T]) Where(clause string, args ...any) *Query[T] {
	q2 := q.clone()
	q2.wheres = append(q2.wheres, whereClause{clause, args})
	return q2
}

func (q *Query[T]) OrderBy(clause string) *Query[T] {
	q2 := q.clone()
	q2.orderBys = append(q2.orderBys, clause)
	return q2
}

func (q *Query[T]) Limit(n int) *Query[T] {
	q2 := q.clone()
	q2.limit = &n
	return q2
}

// Scopes applies the given scope.Scope values to the query.
func (q *Query[T]) Scopes(scopes ...scope.Scope) *Query[T] {
	q2 := q.clone()
	for _, s := range scopes {
		s.Apply(q2)
	}
	return q2
}

// --- scope.Applier implementation ---

func (q *Query[T]) ApplyWhere(clause string, args []any) {
	q.wheres = append(q.wheres, whereClause{clause, args})
}

func (q *Query[T]) ApplyOrderBy(clause string) {
	q.orderBys = append(q.orderBys, clause)
}

func (q *Query[T]) ApplyLimit(n int)  { q.limit = &n }
func (q *Query[T]) ApplyOffset(n int) { q.offset = &n }

var _ scope.Applier = (*Query[any])(nil)

// --- Terminal methods ---

// All executes a SELECT and returns all matching rows.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	query, args := q.buildSelect()

	rows, err := q.db.QueryContext(ctx, rewritePlaceholders(q.db.dialect(), query), args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()

	var result []T
	for rows.Next() {
		item, err := q.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err() //nolint:wrapcheck // pass through
}

// First executes a SELECT with LIMIT 1 and returns the first row.
// Returns ErrNotFound if no rows match.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	var zero T
	items, err := q.Limit(1).All(ctx)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, ErrNotFound
	}
	return items[0], nil
}

// Count returns the number of rows matching the current query conditions.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(q.qi(q.table))
	args := q.appendWhere(&b)

	rows, err := q.db.QueryContext(ctx, rewritePlaceholders(q.db.dialect(), b.String()), args...)
	if err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, errors.New("orm: COUNT returned no rows")
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	return count, rows.Err() //nolint:wrapcheck // pass through
}

// Create inserts t with every column, primary key included.
func (q *Query[T]) Create(ctx context.Context, t *T) error {
	columns, values := q.colVals(t)
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		q.qi(q.table),
		q.quoteColumns(columns),
		placeholders(len(columns)),
	)

	_, err := q.db.ExecContext(ctx, rewritePlaceholders(q.db.dialect(), query), values...)
	return err //nolint:wrapcheck // pass through
}

// Update sets every non-PK column of the row identified by t's primary key
// and returns the number of rows changed. Accumulated WHERE clauses are
// ANDed to the key condition, so
//
//	q.Where("completed_at IS NULL").Update(ctx, job)
//
// only writes while the stored row is still open. Callers use the count
// as a compare-and-set result.
func (q *Query[T]) Update(ctx context.Context, t *T) (int64, error) {
	columns, values := q.colVals(t)

	var sets []string
	var args []any
	var pkVal any
	for i, col := range columns {
		if col == q.pk {
			pkVal = values[i]
			continue
		}
		sets = append(sets, q.qi(col)+" = ?")
		args = append(args, values[i])
	}
	if pkVal == nil {
		return 0, errors.New("orm: primary key value is required for Update")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", q.qi(q.table), strings.Join(sets, ", "))
	q2 := q.clone()
	q2.wheres = append([]whereClause{{q.qi(q.pk) + " = ?", []any{pkVal}}}, q2.wheres...)
	args = append(args, q2.appendWhere(&b)...)

	result, err := q.db.ExecContext(ctx, rewritePlaceholders(q.db.dialect(), b.String()), args...)
	if err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	return result.RowsAffected() //nolint:wrapcheck // pass through
}

// --- SQL building ---

// qi quotes an identifier (table/column name) using the dialect.
func (q *Query[T]) qi(name string) string {
	return q.db.dialect().QuoteIdent(name)
}

// quoteColumns joins column names with dialect-aware quoting.
func (q *Query[T]) quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = q.qi(c)
	}
	return strings.Join(quoted, ", ")
}

func (q *Query[T]) buildSelect() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(q.columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(q.quoteColumns(q.columns))
	}
	b.WriteString(" FROM ")
	b.WriteString(q.qi(q.table))

	args := q.appendWhere(&b)

	if len(q.orderBys) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBys, ", "))
	}
	if q.limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *q.limit)
	}
	if q.offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *q.offset)
	}
	return b.String(), args
}

func (q *Query[T]) appendWhere(b *strings.Builder) []any {
	if len(q.wheres) == 0 {
		return nil
	}

	var args []any
	b.WriteString(" WHERE ")
	for i, w := range q.wheres {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(w.clause)
		args = append(args, w.args...)
	}
	return args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
