package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Page selects a slice of a job listing. Number is 1-based; a zero Size
// returns every job.
type Page struct {
	Number int
	Size   int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Store persists client jobs.
type Store interface {
	Create(ctx context.Context, job *ClientJob) error
	// Get returns the job with id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*ClientJob, error)
	// List returns the jobs of a resource type, oldest first.
	List(ctx context.Context, resourceType string, page Page) ([]*ClientJob, error)
	// Count returns how many jobs of a resource type exist, ignoring paging.
	Count(ctx context.Context, resourceType string) (int64, error)
	// Save writes job over the stored row only while the stored row is
	// still pending. Otherwise it fails with ErrInvalidTransition, or
	// ErrNotFound when there is no row.
	Save(ctx context.Context, job *ClientJob) error
}

// MemoryStore keeps jobs in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*ClientJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[uuid.UUID]*ClientJob{}}
}

func (s *MemoryStore) Create(_ context.Context, job *ClientJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("queue: job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*ClientJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job.clone(), nil
}

func (s *MemoryStore) List(_ context.Context, resourceType string, page Page) ([]*ClientJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := lo.FilterMap(lo.Values(s.jobs), func(j *ClientJob, _ int) (*ClientJob, bool) {
		return j.clone(), j.ResourceType == resourceType
	})
	sort.Slice(jobs, func(a, b int) bool {
		if jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].ID.String() < jobs[b].ID.String()
		}
		return jobs[a].CreatedAt.Before(jobs[b].CreatedAt)
	})
	if page.Size > 0 {
		jobs = lo.Subset(jobs, page.offset(), uint(page.Size))
	}
	return jobs, nil
}

func (s *MemoryStore) Count(_ context.Context, resourceType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(lo.CountBy(lo.Values(s.jobs), func(j *ClientJob) bool {
		return j.ResourceType == resourceType
	})), nil
}

func (s *MemoryStore) Save(_ context.Context, job *ClientJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[job.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, job.ID)
	}
	if stored.IsTerminal() {
		return &TransitionError{Job: job.ID, From: stored.State(), To: job.State()}
	}
	s.jobs[job.ID] = job.clone()
	return nil
}

var _ Store = (*MemoryStore)(nil)
