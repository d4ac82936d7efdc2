package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// MemoryStore keeps reports in process memory. Used with STORE_DRIVER=memory
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[primitive.ObjectID]*Report
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[primitive.ObjectID]*Report),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now

	stored := clone(report)
	s.reports[report.ID] = stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id primitive.ObjectID) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, apperrors.NotFound("Report not found")
	}
	return clone(report), nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Report{}
	for _, r := range s.reports {
		if filter.matches(r) {
			out = append(out, *clone(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, patch Patch) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, apperrors.NotFound("Report not found")
	}
	patch.apply(report)
	report.UpdatedAt = s.now()
	return clone(report), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func clone(r *Report) *Report {
	c := *r
	if r.RewardAmount != nil {
		amount := *r.RewardAmount
		c.RewardAmount = &amount
	}
	return &c
}
