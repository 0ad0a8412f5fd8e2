package gradescale

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	scales  map[string]GradeScale
	order   []string
	weights map[string]bool
}

func NewInMemoryStore() Store {
	return &memoryStore{
		scales:  map[string]GradeScale{},
		weights: map[string]bool{},
	}
}

func (m *memoryStore) PutScale(_ context.Context, rec GradeScale) (GradeScale, error) {
	if !rec.Type.Valid() {
		return GradeScale{}, fmt.Errorf("%w: unknown scale type %q", ErrInvalidArgument, rec.Type)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	prev, exists := m.scales[rec.ID]
	if exists && prev.IsCourseScale {
		return GradeScale{}, ErrCourseScaleReadOnly
	}
	if !exists {
		m.order = append(m.order, rec.ID)
	} else if rec.CourseID == "" {
		rec.CourseID = prev.CourseID
	}
	rec.Items = rec.Items.Clone()
	if rec.Items == nil {
		rec.Items = Items{}
	}
	m.scales[rec.ID] = rec
	return rec, nil
}

func (m *memoryStore) GetScale(_ context.Context, id string) (GradeScale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.scales[id]
	if !ok {
		return GradeScale{}, ErrNotFound
	}
	rec.Items = rec.Items.Clone()
	return rec, nil
}

func (m *memoryStore) ListScales(_ context.Context, courseID string) ([]GradeScale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []GradeScale{}
	for _, id := range m.order {
		rec := m.scales[id]
		if courseID != "" && rec.CourseID != courseID {
			continue
		}
		rec.Items = rec.Items.Clone()
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryStore) SetCourseUseWeights(_ context.Context, courseID string, useWeights bool) error {
	if courseID == "" {
		return fmt.Errorf("%w: course id required", ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights[courseID] = useWeights
	return nil
}

func (m *memoryStore) CourseUsesWeights(_ context.Context, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.weights[courseID]
	if !ok {
		return true, nil
	}
	return v, nil
}
