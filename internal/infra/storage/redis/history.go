package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/repository"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

// HistoryStore keeps the rolling histories in Redis lists. Entries
// are LPUSHed and the list LTRIMmed to capacity, so the newest entry
// sits at index 0; reads reverse back to oldest-first order.
type HistoryStore struct {
	client           *redis.Client
	capacity         int64
	snapshotCapacity int64
}

var _ repository.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(client *redis.Client, capacity, snapshotCapacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	if snapshotCapacity <= 0 {
		snapshotCapacity = 50
	}
	return &HistoryStore{
		client:           client,
		capacity:         int64(capacity),
		snapshotCapacity: int64(snapshotCapacity),
	}
}

func constraintsKey(key entity.AnalysisKey) string {
	return "flowradar:constraints:" + key.String()
}

func mediansKey(key entity.AnalysisKey, stage string) string {
	return "flowradar:medians:" + key.String() + ":" + stage
}

func snapshotsKey(key entity.AnalysisKey) string {
	return "flowradar:snapshots:" + key.String()
}

func (s *HistoryStore) pushBounded(ctx context.Context, listKey string, capacity int64, values ...interface{}) error {
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, listKey, values...)
	pipe.LTrim(ctx, listKey, 0, capacity-1)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *HistoryStore) AppendConstraints(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint) error {
	values := make([]interface{}, 0, len(constraints))
	for _, c := range constraints {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal constraint: %w", err)
		}
		values = append(values, payload)
	}
	if len(values) == 0 {
		return nil
	}
	return s.pushBounded(ctx, constraintsKey(key), s.capacity, values...)
}

func (s *HistoryStore) ListConstraints(ctx context.Context, key entity.AnalysisKey) ([]entity.Constraint, error) {
	raw, err := s.client.LRange(ctx, constraintsKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange constraints: %w", err)
	}
	out := make([]entity.Constraint, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var c entity.Constraint
		if err := json.Unmarshal([]byte(raw[i]), &c); err != nil {
			return nil, fmt.Errorf("unmarshal constraint: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *HistoryStore) ClearConstraints(ctx context.Context, key entity.AnalysisKey) error {
	return s.client.Del(ctx, constraintsKey(key)).Err()
}

func (s *HistoryStore) UpdateConstraint(ctx context.Context, key entity.AnalysisKey, constraint entity.Constraint) error {
	listKey := constraintsKey(key)
	raw, err := s.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("lrange constraints: %w", err)
	}
	for i, item := range raw {
		var c entity.Constraint
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return fmt.Errorf("unmarshal constraint: %w", err)
		}
		if c.ID == constraint.ID {
			payload, err := json.Marshal(constraint)
			if err != nil {
				return fmt.Errorf("marshal constraint: %w", err)
			}
			return s.client.LSet(ctx, listKey, int64(i), payload).Err()
		}
	}
	return usecase.ErrConstraintNotFound
}

func (s *HistoryStore) AppendStageMedian(ctx context.Context, key entity.AnalysisKey, stage string, median float64) error {
	return s.pushBounded(ctx, mediansKey(key, stage), s.capacity,
		strconv.FormatFloat(median, 'f', -1, 64))
}

func (s *HistoryStore) ListStageMedians(ctx context.Context, key entity.AnalysisKey, stage string) ([]float64, error) {
	raw, err := s.client.LRange(ctx, mediansKey(key, stage), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange medians: %w", err)
	}
	out := make([]float64, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		v, err := strconv.ParseFloat(raw[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse median: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *HistoryStore) AppendSnapshot(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric) error {
	payload, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.pushBounded(ctx, snapshotsKey(key), s.snapshotCapacity, payload)
}

func (s *HistoryStore) ListSnapshots(ctx context.Context, key entity.AnalysisKey) ([][]entity.FlowStageMetric, error) {
	raw, err := s.client.LRange(ctx, snapshotsKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange snapshots: %w", err)
	}
	out := make([][]entity.FlowStageMetric, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var stages []entity.FlowStageMetric
		if err := json.Unmarshal([]byte(raw[i]), &stages); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		out = append(out, stages)
	}
	return out, nil
}
