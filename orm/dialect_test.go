package orm_test

import (
	"testing"

	"github.com/mickamy/jsonapi-hydrator/orm"
)

func TestMySQLPlaceholder(t *testing.T) {
	t.Parallel()

	for _, index := range []int{1, 2, 10} {
		if got := orm.MySQL.Placeholder(index); got != "?" {
			t.Errorf("Placeholder(%d) = %q, want %q", index, got, "?")
		}
	}
}

func TestPostgreSQLPlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		index int
		want  string
	}{
		{1, "$1"},
		{2, "$2"},
		{10, "$10"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := orm.PostgreSQL.Placeholder(tt.index); got != tt.want {
				t.Errorf("Placeholder(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestMySQLQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := orm.MySQL.QuoteIdent("order"); got != "`order`" {
		t.Errorf("QuoteIdent = %q, want %q", got, "`order`")
	}
}

func TestPostgreSQLQuoteIdent(t *testing.T) {
	t.Parallel()

	want := `"order"`
	if got := orm.PostgreSQL.QuoteIdent("order"); got != want {
		t.Errorf("QuoteIdent = %q, want %q", got, want)
	}
}

func TestInsertIgnore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dialect    orm.Dialect
		wantPrefix string
		wantSuffix string
	}{
		{"MySQL", orm.MySQL, "INSERT IGNORE INTO", ""},
		{"PostgreSQL", orm.PostgreSQL, "INSERT INTO", " ON CONFLICT DO NOTHING"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prefix, suffix := tt.dialect.InsertIgnore()
			if prefix != tt.wantPrefix || suffix != tt.wantSuffix {
				t.Errorf("InsertIgnore() = (%q, %q), want (%q, %q)", prefix, suffix, tt.wantPrefix, tt.wantSuffix)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver  string
		want    orm.Dialect
		wantErr bool
	}{
		{driver: "mysql", want: orm.MySQL},
		{driver: "pgx", want: orm.PostgreSQL},
		{driver: "postgres", want: orm.PostgreSQL},
		{driver: "sqlite3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			t.Parallel()

			got, err := orm.DialectFor(tt.driver)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DialectFor(%q) error = nil, want error", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("DialectFor(%q) error = %v", tt.driver, err)
			}
			if got != tt.want {
				t.Errorf("DialectFor(%q) = %T, want %T", tt.driver, got, tt.want)
			}
		})
	}
}
