package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/flowradar/flowradar/internal/domain/entity"
	"github.com/flowradar/flowradar/internal/domain/repository"
	"github.com/flowradar/flowradar/internal/domain/usecase"
)

// HistoryStore persists the rolling histories in Postgres. Rows are
// ordered by an insertion sequence; capacity is enforced by deleting
// the oldest rows past the window after every append.
type HistoryStore struct {
	db               *sql.DB
	capacity         int
	snapshotCapacity int
}

var _ repository.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(db *sql.DB, capacity, snapshotCapacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	if snapshotCapacity <= 0 {
		snapshotCapacity = 50
	}
	return &HistoryStore{db: db, capacity: capacity, snapshotCapacity: snapshotCapacity}
}

func (s *HistoryStore) AppendConstraints(ctx context.Context, key entity.AnalysisKey, constraints []entity.Constraint) error {
	for _, c := range constraints {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal constraint: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO constraint_history (org, team, repo, constraint_id, payload, detected_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			key.Org, key.Team, key.Repo, c.ID, payload, c.DetectedAt)
		if err != nil {
			return fmt.Errorf("insert constraint: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM constraint_history
		WHERE org = $1 AND team = $2 AND repo = $3
		  AND seq IN (
			SELECT seq FROM constraint_history
			WHERE org = $1 AND team = $2 AND repo = $3
			ORDER BY seq DESC OFFSET $4
		  )`,
		key.Org, key.Team, key.Repo, s.capacity)
	if err != nil {
		return fmt.Errorf("truncate constraint history: %w", err)
	}
	return nil
}

func (s *HistoryStore) ListConstraints(ctx context.Context, key entity.AnalysisKey) ([]entity.Constraint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM constraint_history
		WHERE org = $1 AND team = $2 AND repo = $3
		ORDER BY seq`,
		key.Org, key.Team, key.Repo)
	if err != nil {
		return nil, fmt.Errorf("select constraint history: %w", err)
	}
	defer CloseRows(rows)

	var out []entity.Constraint
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var c entity.Constraint
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("unmarshal constraint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *HistoryStore) ClearConstraints(ctx context.Context, key entity.AnalysisKey) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM constraint_history
		WHERE org = $1 AND team = $2 AND repo = $3`,
		key.Org, key.Team, key.Repo)
	return err
}

func (s *HistoryStore) UpdateConstraint(ctx context.Context, key entity.AnalysisKey, constraint entity.Constraint) error {
	payload, err := json.Marshal(constraint)
	if err != nil {
		return fmt.Errorf("marshal constraint: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE constraint_history SET payload = $5
		WHERE org = $1 AND team = $2 AND repo = $3 AND constraint_id = $4`,
		key.Org, key.Team, key.Repo, constraint.ID, payload)
	if err != nil {
		return fmt.Errorf("update constraint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return usecase.ErrConstraintNotFound
	}
	return nil
}

func (s *HistoryStore) AppendStageMedian(ctx context.Context, key entity.AnalysisKey, stage string, median float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stage_medians (org, team, repo, stage, median)
		VALUES ($1, $2, $3, $4, $5)`,
		key.Org, key.Team, key.Repo, stage, median)
	if err != nil {
		return fmt.Errorf("insert stage median: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM stage_medians
		WHERE org = $1 AND team = $2 AND repo = $3 AND stage = $4
		  AND seq IN (
			SELECT seq FROM stage_medians
			WHERE org = $1 AND team = $2 AND repo = $3 AND stage = $4
			ORDER BY seq DESC OFFSET $5
		  )`,
		key.Org, key.Team, key.Repo, stage, s.capacity)
	if err != nil {
		return fmt.Errorf("truncate stage medians: %w", err)
	}
	return nil
}

func (s *HistoryStore) ListStageMedians(ctx context.Context, key entity.AnalysisKey, stage string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT median FROM stage_medians
		WHERE org = $1 AND team = $2 AND repo = $3 AND stage = $4
		ORDER BY seq`,
		key.Org, key.Team, key.Repo, stage)
	if err != nil {
		return nil, fmt.Errorf("select stage medians: %w", err)
	}
	defer CloseRows(rows)

	var out []float64
	for rows.Next() {
		var m float64
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *HistoryStore) AppendSnapshot(ctx context.Context, key entity.AnalysisKey, stages []entity.FlowStageMetric) error {
	payload, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stage_snapshots (org, team, repo, payload)
		VALUES ($1, $2, $3, $4)`,
		key.Org, key.Team, key.Repo, payload)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM stage_snapshots
		WHERE org = $1 AND team = $2 AND repo = $3
		  AND seq IN (
			SELECT seq FROM stage_snapshots
			WHERE org = $1 AND team = $2 AND repo = $3
			ORDER BY seq DESC OFFSET $4
		  )`,
		key.Org, key.Team, key.Repo, s.snapshotCapacity)
	if err != nil {
		return fmt.Errorf("truncate snapshots: %w", err)
	}
	return nil
}

func (s *HistoryStore) ListSnapshots(ctx context.Context, key entity.AnalysisKey) ([][]entity.FlowStageMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM stage_snapshots
		WHERE org = $1 AND team = $2 AND repo = $3
		ORDER BY seq`,
		key.Org, key.Team, key.Repo)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer CloseRows(rows)

	var out [][]entity.FlowStageMetric
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var stages []entity.FlowStageMetric
		if err := json.Unmarshal(payload, &stages); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		out = append(out, stages)
	}
	return out, rows.Err()
}
