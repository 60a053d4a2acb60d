package orm_test

import (
	"database/sql"
	"testing"

	"github.com/mickamy/jsonapi-hydrator/orm"
	"github.com/mickamy/jsonapi-hydrator/scope"
)

type testJob struct {
	ID           string
	ResourceType string
	Attempts     int
}

var testJobColumns = []string{"id", "resource_type", "attempts"}

func scanTestJob(_ *sql.Rows) (testJob, error) {
	return testJob{}, nil
}

func testJobColVals(j *testJob) ([]string, []any) {
	return testJobColumns, []any{j.ID, j.ResourceType, j.Attempts}
}

func newTestQuery(tq *orm.TestQuerier) *orm.Query[testJob] {
	return orm.NewQuery[testJob](tq, "jobs", testJobColumns, "id", scanTestJob, testJobColVals)
}

// --- SELECT (MySQL) ---

func TestBuildSelectAll(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	_, _ = newTestQuery(tq).All(t.Context())

	want := "SELECT `id`, `resource_type`, `attempts` FROM `jobs`"
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

func TestBuildSelectStar(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	q := orm.NewQuery[testJob](tq, "jobs", nil, "id", scanTestJob, nil)
	_, _ = q.All(t.Context())

	want := "SELECT * FROM `jobs`"
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

func TestBuildSelectWhere(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	_, _ = newTestQuery(tq).Where("resource_type = ?", "downloads").Where("attempts > ?", 2).All(t.Context())

	got := tq.LastQuery()
	want := "SELECT `id`, `resource_type`, `attempts` FROM `jobs` WHERE resource_type = ? AND attempts > ?"
	if got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if len(got.Args) != 2 || got.Args[0] != "downloads" || got.Args[1] != 2 {
		t.Errorf("Args = %v", got.Args)
	}
}

func TestBuildSelectFull(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	_, _ = newTestQuery(tq).
		Where("resource_type = ?", "downloads").
		OrderBy("created_at DESC").
		Scopes(scope.Page(3, 5)).
		All(t.Context())

	want := "SELECT `id`, `resource_type`, `attempts` FROM `jobs` WHERE resource_type = ? ORDER BY created_at DESC LIMIT 5 OFFSET 10"
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

// --- Scopes ---

func TestBuildSelectWithScopes(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	_, _ = newTestQuery(tq).Scopes(
		scope.In("id", []string{"a", "b"}),
		scope.OrderBy("created_at"),
		scope.Page(2, 15),
	).All(t.Context())

	got := tq.LastQuery()
	want := "SELECT `id`, `resource_type`, `attempts` FROM `jobs` WHERE id IN (?, ?) ORDER BY created_at LIMIT 15 OFFSET 15"
	if got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if len(got.Args) != 2 {
		t.Errorf("Args = %v, want 2 args", got.Args)
	}
}

func TestQueryImmutability(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	base := newTestQuery(tq)

	_ = base.Where("attempts = ?", 0)
	_ = base.OrderBy("id")
	_ = base.Limit(10)
	_ = base.Scopes(scope.Page(2, 5))

	_, _ = base.All(t.Context())

	want := "SELECT `id`, `resource_type`, `attempts` FROM `jobs`"
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("base query was mutated: SQL = %q", got.SQL)
	}
}

// --- COUNT ---

func TestBuildCount(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.PostgreSQL)
	_, _ = newTestQuery(tq).Where("resource_type = ?", "downloads").Count(t.Context())

	want := `SELECT COUNT(*) FROM "jobs" WHERE resource_type = $1`
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

// --- INSERT ---

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect orm.Dialect
		want    string
	}{
		{"MySQL", orm.MySQL, "INSERT INTO `jobs` (`id`, `resource_type`, `attempts`) VALUES (?, ?, ?)"},
		{"PostgreSQL", orm.PostgreSQL, `INSERT INTO "jobs" ("id", "resource_type", "attempts") VALUES ($1, $2, $3)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tq := orm.NewTestQuerier(tt.dialect)
			j := testJob{ID: "j1", ResourceType: "downloads"}
			if err := newTestQuery(tq).Create(t.Context(), &j); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got := tq.LastQuery()
			if got.SQL != tt.want {
				t.Errorf("SQL = %q, want %q", got.SQL, tt.want)
			}
			if len(got.Args) != 3 || got.Args[0] != "j1" {
				t.Errorf("Args = %v", got.Args)
			}
		})
	}
}

// --- UPDATE ---

func TestBuildUpdate(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL)
	tq.Affected = 1

	j := testJob{ID: "j1", ResourceType: "downloads", Attempts: 2}
	n, err := newTestQuery(tq).Update(t.Context(), &j)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	got := tq.LastQuery()
	want := "UPDATE `jobs` SET `resource_type` = ?, `attempts` = ? WHERE `id` = ?"
	if got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
	if len(got.Args) != 3 || got.Args[0] != "downloads" || got.Args[1] != 2 || got.Args[2] != "j1" {
		t.Errorf("Args = %v", got.Args)
	}
}

func TestBuildUpdateCompareAndSet(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.PostgreSQL)

	j := testJob{ID: "j1", ResourceType: "downloads"}
	n, err := newTestQuery(tq).Where("completed_at IS NULL").Update(t.Context(), &j)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected = %d, want 0", n)
	}

	want := `UPDATE "jobs" SET "resource_type" = $1, "attempts" = $2 WHERE "id" = $3 AND completed_at IS NULL`
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

// --- First ---

func TestFirstAddsLimit(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.PostgreSQL)
	_, _ = newTestQuery(tq).Where("id = ?", "j1").First(t.Context())

	want := `SELECT "id", "resource_type", "attempts" FROM "jobs" WHERE id = $1 LIMIT 1`
	if got := tq.LastQuery(); got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}
