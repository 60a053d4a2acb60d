package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mickamy/jsonapi-hydrator/orm"
	"github.com/mickamy/jsonapi-hydrator/scope"
)

var jobColumns = []string{
	"id", "resource_type", "resource_id", "attempts", "tries", "timeout",
	"timeout_at", "created_at", "updated_at", "completed_at", "failed",
}

// SQLStore keeps jobs in the json_api_client_jobs table. Timeouts are
// stored in whole seconds. MySQL connections need parseTime=true, and
// clientFoundRows=true so that Save can tell a matched row from a
// changed one.
type SQLStore struct {
	db    orm.Querier
	table string
}

// NewSQLStore returns a store over db, which may be a *orm.DB or a
// *orm.Tx.
func NewSQLStore(db orm.Querier) *SQLStore {
	return &SQLStore{db: db, table: orm.ResolveTableName[ClientJob](ResourceType)}
}

func (s *SQLStore) jobs() *orm.Query[ClientJob] {
	return orm.NewQuery[ClientJob](s.db, s.table, jobColumns, "id", scanJob, jobValues)
}

func (s *SQLStore) Create(ctx context.Context, job *ClientJob) error {
	if err := s.jobs().Create(ctx, job); err != nil {
		return fmt.Errorf("queue: create job %s: %w", job.ID, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id uuid.UUID) (*ClientJob, error) {
	job, err := s.jobs().Where("id = ?", id.String()).First(ctx)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("queue: get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *SQLStore) List(ctx context.Context, resourceType string, page Page) ([]*ClientJob, error) {
	scopes := scope.Scopes{
		scope.Where("resource_type = ?", resourceType),
		scope.OrderBy("created_at"),
		scope.OrderBy("id"),
	}
	if page.Size > 0 {
		scopes = scopes.Append(scope.Page(page.Number, page.Size))
	}
	jobs, err := s.jobs().Scopes(scopes...).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue: list %s jobs: %w", resourceType, err)
	}
	out := make([]*ClientJob, len(jobs))
	for i := range jobs {
		out[i] = &jobs[i]
	}
	return out, nil
}

func (s *SQLStore) Count(ctx context.Context, resourceType string) (int64, error) {
	n, err := s.jobs().Where("resource_type = ?", resourceType).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("queue: count %s jobs: %w", resourceType, err)
	}
	return n, nil
}

// Save updates the row only while its completed_at is still NULL.
func (s *SQLStore) Save(ctx context.Context, job *ClientJob) error {
	n, err := s.jobs().Where("completed_at IS NULL").Update(ctx, job)
	if err != nil {
		return fmt.Errorf("queue: save job %s: %w", job.ID, err)
	}
	if n > 0 {
		return nil
	}

	stored, err := s.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	return &TransitionError{Job: job.ID, From: stored.State(), To: job.State()}
}

var _ Store = (*SQLStore)(nil)

func scanJob(rows *sql.Rows) (ClientJob, error) {
	var (
		j           ClientJob
		id          string
		resourceID  sql.NullString
		timeout     sql.NullInt64
		timeoutAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := rows.Scan(
		&id, &j.ResourceType, &resourceID, &j.Attempts, &j.Tries, &timeout,
		&timeoutAt, &j.CreatedAt, &j.UpdatedAt, &completedAt, &j.Failed,
	)
	if err != nil {
		return j, err //nolint:wrapcheck // pass through
	}
	if j.ID, err = uuid.Parse(id); err != nil {
		return j, fmt.Errorf("queue: job id %q: %w", id, err)
	}
	j.ResourceID = resourceID.String
	if timeout.Valid {
		d := time.Duration(timeout.Int64) * time.Second
		j.Timeout = &d
	}
	j.TimeoutAt = nullTimePtr(timeoutAt)
	j.CompletedAt = nullTimePtr(completedAt)
	return j, nil
}

func jobValues(j *ClientJob) ([]string, []any) {
	var timeout sql.NullInt64
	if j.Timeout != nil {
		timeout = sql.NullInt64{Int64: int64(*j.Timeout / time.Second), Valid: true}
	}
	return jobColumns, []any{
		j.ID.String(),
		j.ResourceType,
		sql.NullString{String: j.ResourceID, Valid: j.ResourceID != ""},
		j.Attempts,
		j.Tries,
		timeout,
		timePtrNull(j.TimeoutAt),
		j.CreatedAt,
		j.UpdatedAt,
		timePtrNull(j.CompletedAt),
		j.Failed,
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func timePtrNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
