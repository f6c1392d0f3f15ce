package memory

import (
	"context"
	"sync"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/repository"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

// HistoryStore keeps all rolling analysis state in process memory.
// Each list is truncated from the front once it exceeds its capacity.
type HistoryStore struct {
	mu               sync.RWMutex
	capacity         int
	snapshotCapacity int

	constraints map[entity.AnalysisKey][]entity.Constraint
	medians     map[medianKey][]float64
	snapshots   map[entity.AnalysisKey][][]entity.FlowStageMetric
}

type medianKey struct {
	key   entity.AnalysisKey
	stage string
}

var _ repository.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(capacity, snapshotCapacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	if snapshotCapacity <= 0 {
		snapshotCapacity = 50
	}
	return &HistoryStore{
		capacity:         capacity,
		snapshotCapacity: snapshotCapacity,
		constraints:      make(map[entity.AnalysisKey][]entity.Constraint),
		medians:          make(map[medianKey][]float64),
		snapshots:        make(map[entity.AnalysisKey][][]entity.FlowStageMetric),
	}
}

func (s *HistoryStore) AppendConstraints(_ context.Context, key entity.AnalysisKey, constraints []entity.Constraint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.constraints[key], constraints...)
	if excess := len(list) - s.capacity; excess > 0 {
		list = list[excess:]
	}
	s.constraints[key] = list
	return nil
}

func (s *HistoryStore) ListConstraints(_ context.Context, key entity.AnalysisKey) ([]entity.Constraint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Constraint, len(s.constraints[key]))
	copy(out, s.constraints[key])
	return out, nil
}

func (s *HistoryStore) ClearConstraints(_ context.Context, key entity.AnalysisKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.constraints, key)
	return nil
}

func (s *HistoryStore) UpdateConstraint(_ context.Context, key entity.AnalysisKey, constraint entity.Constraint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.constraints[key] {
		if c.ID == constraint.ID {
			s.constraints[key][i] = constraint
			return nil
		}
	}
	return usecase.ErrConstraintNotFound
}

func (s *HistoryStore) AppendStageMedian(_ context.Context, key entity.AnalysisKey, stage string, median float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mk := medianKey{key: key, stage: stage}
	list := append(s.medians[mk], median)
	if excess := len(list) - s.capacity; excess > 0 {
		list = list[excess:]
	}
	s.medians[mk] = list
	return nil
}

func (s *HistoryStore) ListStageMedians(_ context.Context, key entity.AnalysisKey, stage string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mk := medianKey{key: key, stage: stage}
	out := make([]float64, len(s.medians[mk]))
	copy(out, s.medians[mk])
	return out, nil
}

func (s *HistoryStore) AppendSnapshot(_ context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make([]entity.FlowStageMetric, len(stages))
	copy(snap, stages)
	list := append(s.snapshots[key], snap)
	if excess := len(list) - s.snapshotCapacity; excess > 0 {
		list = list[excess:]
	}
	s.snapshots[key] = list
	return nil
}

func (s *HistoryStore) ListSnapshots(_ context.Context, key entity.AnalysisKey) ([][]entity.FlowStageMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]entity.FlowStageMetric, len(s.snapshots[key]))
	copy(out, s.snapshots[key])
	return out, nil
}
