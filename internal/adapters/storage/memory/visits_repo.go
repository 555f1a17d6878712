package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hospital-queue/internal/domain/queue"

	"github.com/pkg/errors"
)

type visitRepo struct {
	mu   sync.RWMutex
	byID map[string]queue.VisitRecord
}

func NewVisitRepo() queue.Repository {
	return &visitRepo{
		byID: make(map[string]queue.VisitRecord),
	}
}

func (r *visitRepo) Create(ctx context.Context, v queue.VisitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.Wrap(queue.ErrInvalidInput, "visit id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return errors.Errorf("visit %s already exists", v.ID)
	}
	r.byID[v.ID] = v
	return nil
}

func (r *visitRepo) Update(ctx context.Context, v queue.VisitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[v.ID]; !exists {
		return errors.Wrapf(queue.ErrNotFound, "visit %s", v.ID)
	}
	r.byID[v.ID] = v
	return nil
}

func (r *visitRepo) GetByID(ctx context.Context, id string) (queue.VisitRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return queue.VisitRecord{}, errors.Wrapf(queue.ErrNotFound, "visit %s", id)
	}
	return v, nil
}

func (r *visitRepo) ListByDepartment(ctx context.Context, dept queue.Department) ([]queue.VisitRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]queue.VisitRecord, 0)
	for _, v := range r.byID {
		if v.Department == dept {
			out = append(out, v)
		}
	}

	// mismo orden que la query de postgres
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
