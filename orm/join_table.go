package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// JoinPair holds a source–target pair read from a join table.
type JoinPair[S, T comparable] struct {
	Source S
	Target T
}

// QueryJoinTable reads (sourceCol, targetCol) rows from the given join table
// where sourceCol IN (sourceIDs). It returns a slice of JoinPair.
func QueryJoinTable[S, T comparable](
	ctx context.Context, db Querier, table, sourceCol, targetCol string, sourceIDs []S,
) ([]JoinPair[S, T], error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	qi := db.dialect().QuoteIdent
	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s IN (%s)",
		qi(sourceCol), qi(targetCol), qi(table), qi(sourceCol),
		placeholders(len(sourceIDs)),
	)

	rows, err := db.QueryContext(ctx, rewritePlaceholders(db.dialect(), query), toArgs(sourceIDs)...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()

	var pairs []JoinPair[S, T]
	for rows.Next() {
		var p JoinPair[S, T]
		if err := rows.Scan(&p.Source, &p.Target); err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err() //nolint:wrapcheck // pass through
}

// SyncJoinTable makes the targets linked to source in the join table equal
// exactly targets. Links not in targets are deleted and missing ones are
// inserted; rows already present are untouched. It returns the targets
// added and removed.
func SyncJoinTable[S, T comparable](
	ctx context.Context, db Querier, table, sourceCol, targetCol string, source S, targets []T,
) (attached, detached []T, err error) {
	pairs, err := QueryJoinTable[S, T](ctx, db, table, sourceCol, targetCol, []S{source})
	if err != nil {
		return nil, nil, err
	}
	current := lo.Map(pairs, func(p JoinPair[S, T], _ int) T { return p.Target })
	detached, attached = lo.Difference(lo.Uniq(current), lo.Uniq(targets))

	d := db.dialect()
	qi := d.QuoteIdent

	if len(detached) > 0 {
		query := fmt.Sprintf(
			"DELETE FROM %s WHERE %s = ? AND %s IN (%s)",
			qi(table), qi(sourceCol), qi(targetCol), placeholders(len(detached)),
		)
		args := append([]any{source}, toArgs(detached)...)
		if _, err := db.ExecContext(ctx, rewritePlaceholders(d, query), args...); err != nil {
			return nil, nil, err //nolint:wrapcheck // pass through
		}
	}

	if len(attached) > 0 {
		rowsSQL := make([]string, len(attached))
		args := make([]any, 0, 2*len(attached))
		for i, t := range attached {
			rowsSQL[i] = "(?, ?)"
			args = append(args, source, t)
		}
		prefix, suffix := d.InsertIgnore()
		query := fmt.Sprintf(
			"%s %s (%s, %s) VALUES %s%s",
			prefix, qi(table), qi(sourceCol), qi(targetCol), strings.Join(rowsSQL, ", "), suffix,
		)
		if _, err := db.ExecContext(ctx, rewritePlaceholders(d, query), args...); err != nil {
			return nil, nil, err //nolint:wrapcheck // pass through
		}
	}

	return attached, detached, nil
}

func toArgs[T any](values []T) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
