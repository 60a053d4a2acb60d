package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/mickamy/jsonapi-hydrator/orm"
)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTries limits the attempts of dispatched jobs. Zero means unlimited.
func WithTries(n int) TrackerOption {
	return func(t *Tracker) { t.tries = n }
}

// WithTimeout sets the per-attempt timeout of dispatched jobs.
func WithTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = &d
		}
	}
}

// WithLogger sets the tracker logger.
func WithLogger(l logger.Logger) TrackerOption {
	return func(t *Tracker) { t.log = l }
}

// Tracker records the progress of client jobs on behalf of workers.
// Timestamps come from orm.Now, so a Clock in the context controls them.
type Tracker struct {
	store   Store
	tries   int
	timeout *time.Duration
	log     logger.Logger
}

func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store: store,
		log:   logger.NewLogger().Child("queue"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Dispatch creates a pending job for resourceType.
func (t *Tracker) Dispatch(ctx context.Context, resourceType string) (*ClientJob, error) {
	job := NewClientJob(resourceType, orm.Now(ctx))
	job.Tries = t.tries
	job.Timeout = t.timeout
	if err := t.store.Create(ctx, job); err != nil {
		return nil, err
	}
	t.log.Infon("dispatched job",
		logger.NewStringField("job", job.ID.String()),
		logger.NewStringField("resourceType", resourceType),
	)
	return job, nil
}

// Attempt records that a worker started on the job.
func (t *Tracker) Attempt(ctx context.Context, id uuid.UUID) (*ClientJob, error) {
	return t.transition(ctx, id, "attempt", func(j *ClientJob, now time.Time) error {
		return j.Attempt(now)
	})
}

// Succeed completes the job, recording the produced resource id.
func (t *Tracker) Succeed(ctx context.Context, id uuid.UUID, resourceID string) (*ClientJob, error) {
	return t.transition(ctx, id, "succeed", func(j *ClientJob, now time.Time) error {
		return j.Succeed(now, resourceID)
	})
}

// Fail completes the job as failed.
func (t *Tracker) Fail(ctx context.Context, id uuid.UUID) (*ClientJob, error) {
	return t.transition(ctx, id, "fail", func(j *ClientJob, now time.Time) error {
		return j.Fail(now)
	})
}

// Release is called after an attempt errored. The job fails once its
// tries are exhausted and otherwise stays pending for another attempt.
func (t *Tracker) Release(ctx context.Context, id uuid.UUID) (*ClientJob, error) {
	return t.transition(ctx, id, "release", func(j *ClientJob, now time.Time) error {
		if j.Exhausted() {
			return j.Fail(now)
		}
		if err := j.guard(Pending); err != nil {
			return err
		}
		j.UpdatedAt = now
		return nil
	})
}

func (t *Tracker) transition(
	ctx context.Context, id uuid.UUID, op string, apply func(*ClientJob, time.Time) error,
) (*ClientJob, error) {
	job, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(job, orm.Now(ctx)); err != nil {
		t.log.Warnn("rejected job transition",
			logger.NewStringField("job", id.String()),
			logger.NewStringField("op", op),
			obskit.Error(err),
		)
		return nil, err
	}
	if err := t.store.Save(ctx, job); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			t.log.Warnn("job completed concurrently",
				logger.NewStringField("job", id.String()),
				logger.NewStringField("op", op),
			)
		}
		return nil, err
	}
	t.log.Debugn("job transition",
		logger.NewStringField("job", id.String()),
		logger.NewStringField("op", op),
		logger.NewStringField("state", string(job.State())),
		logger.NewIntField("attempts", int64(job.Attempts)),
	)
	return job, nil
}
