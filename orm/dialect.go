package orm

import "fmt"

// Dialect abstracts SQL differences between database engines.
type Dialect interface {
	// Placeholder returns the bind parameter placeholder for the given
	// 1-based index. MySQL returns "?" regardless of index; PostgreSQL
	// returns "$1", "$2", etc.
	Placeholder(index int) string

	// QuoteIdent quotes an identifier (table name, column name) to safely
	// handle SQL reserved words. MySQL uses backticks; PostgreSQL uses
	// double quotes.
	QuoteIdent(name string) string

	// InsertIgnore returns the statement prefix and suffix of an INSERT
	// that skips rows violating a unique key.
	InsertIgnore() (prefix, suffix string)
}

// MySQL is the Dialect for MySQL / MariaDB.
var MySQL Dialect = mysqlDialect{}

// PostgreSQL is the Dialect for PostgreSQL.
var PostgreSQL Dialect = postgresDialect{}

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "pgx", "postgres":
		return PostgreSQL, nil
	default:
		return nil, fmt.Errorf("orm: no dialect for driver %q", driver)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Placeholder(_ int) string      { return "?" }
func (mysqlDialect) QuoteIdent(name string) string { return "`" + name + "`" }
func (mysqlDialect) InsertIgnore() (string, string) {
	return "INSERT IGNORE INTO", ""
}

type postgresDialect struct{}

func (postgresDialect) Placeholder(index int) string  { return fmt.Sprintf("$%d", index) }
func (postgresDialect) QuoteIdent(name string) string { return `"` + name + `"` }
func (postgresDialect) InsertIgnore() (string, string) {
	return "INSERT INTO", " ON CONFLICT DO NOTHING"
}

// rewritePlaceholders converts ? to dialect-specific placeholders ($1, $2, …).
func rewritePlaceholders(d Dialect, query string) string {
	if _, ok := d.(mysqlDialect); ok {
		return query
	}
	var b []byte
	idx := 1
	for i := range len(query) {
		if query[i] == '?' {
			b = append(b, d.Placeholder(idx)...)
			idx++
			continue
		}
		b = append(b, query[i])
	}
	return string(b)
}
