// Package queue tracks asynchronous work that clients poll as JSON:API
// "queue-jobs" resources.
//
// A ClientJob starts pending and is completed exactly once, either
// succeeded or failed. Stores enforce that with a compare-and-set on the
// stored row, so concurrent workers racing to complete the same job see
// at most one terminal transition survive.
package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mickamy/jsonapi-hydrator/jsonapi"
)

var (
	// ErrNotFound is returned when no job has the requested id.
	ErrNotFound = errors.New("queue: job not found")
	// ErrInvalidTransition is returned when a completed job is changed.
	ErrInvalidTransition = errors.New("queue: invalid job transition")
)

// State is the lifecycle position of a job.
type State string

const (
	Pending   State = "pending"
	Succeeded State = "succeeded"
	Failed    State = "failed"
)

// TransitionError reports a rejected state change.
type TransitionError struct {
	Job  uuid.UUID
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("queue: job %s cannot move from %s to %s", e.Job, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ClientJob is a unit of asynchronous work on behalf of a resource type.
type ClientJob struct {
	ID           uuid.UUID
	ResourceType string
	// ResourceID is the id of the resource the job produced, if any.
	ResourceID string
	Attempts   int
	// Tries is the maximum number of attempts. Zero means unlimited.
	Tries       int
	Timeout     *time.Duration
	TimeoutAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Failed      bool
}

// NewClientJob returns a pending job created at now.
func NewClientJob(resourceType string, now time.Time) *ClientJob {
	return &ClientJob{
		ID:           uuid.New(),
		ResourceType: resourceType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TableName is the table SQLStore keeps jobs in.
func (ClientJob) TableName() string { return "json_api_client_jobs" }

func (j *ClientJob) State() State {
	switch {
	case j.CompletedAt == nil:
		return Pending
	case j.Failed:
		return Failed
	default:
		return Succeeded
	}
}

func (j *ClientJob) IsPending() bool  { return j.CompletedAt == nil }
func (j *ClientJob) IsTerminal() bool { return j.CompletedAt != nil }

// Exhausted reports whether no attempts are left.
func (j *ClientJob) Exhausted() bool {
	return j.Tries > 0 && j.Attempts >= j.Tries
}

// ResourceLocation returns the self link of the resource the job
// produced. There is none until the job is complete and a resource id is
// recorded.
func (j *ClientJob) ResourceLocation(urls jsonapi.URLs) (string, bool) {
	if !j.IsTerminal() || j.ResourceID == "" {
		return "", false
	}
	return urls.Resource(j.ResourceType, j.ResourceID), true
}

// Attempt records the start of a worker attempt.
func (j *ClientJob) Attempt(now time.Time) error {
	if err := j.guard(Pending); err != nil {
		return err
	}
	j.Attempts++
	j.UpdatedAt = now
	if j.Timeout != nil {
		at := now.Add(*j.Timeout)
		j.TimeoutAt = &at
	}
	return nil
}

// Succeed completes the job. An empty resourceID keeps any id already
// recorded.
func (j *ClientJob) Succeed(now time.Time, resourceID string) error {
	if err := j.guard(Succeeded); err != nil {
		return err
	}
	if resourceID != "" {
		j.ResourceID = resourceID
	}
	j.complete(now, false)
	return nil
}

// Fail completes the job as failed.
func (j *ClientJob) Fail(now time.Time) error {
	if err := j.guard(Failed); err != nil {
		return err
	}
	j.complete(now, true)
	return nil
}

func (j *ClientJob) guard(to State) error {
	if j.IsTerminal() {
		return &TransitionError{Job: j.ID, From: j.State(), To: to}
	}
	return nil
}

func (j *ClientJob) complete(now time.Time, failed bool) {
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.Failed = failed
}

func (j *ClientJob) clone() *ClientJob {
	c := *j
	return &c
}
