package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
)

// PlanStore persists fitness plans in SQLite.
type PlanStore struct {
	db *DB
}

// NewPlanStore creates a plan store using the given database.
func NewPlanStore(db *DB) *PlanStore {
	return &PlanStore{db: db}
}

// payloadFields are the well-known keys read out of the opaque plan payload.
type payloadFields struct {
	PlanName      string `json:"plan_name"`
	Goals         string `json:"goals"`
	DurationWeeks int    `json:"duration_weeks"`
}

// Save inserts one plan record and returns the store-assigned id. Plan name,
// goals, and duration are read from the payload, falling back to defaults
// when absent. The insert is a single statement: the record is either fully
// visible afterward or not created at all.
func (s *PlanStore) Save(ctx context.Context, userID, sessionID string, payload json.RawMessage, planType domain.PlanType) (int64, error) {
	var fields payloadFields
	// Payload internals are opaque beyond the well-known keys; a payload
	// without them still saves with defaults.
	_ = json.Unmarshal(payload, &fields)

	if fields.PlanName == "" {
		fields.PlanName = "Custom Plan"
	}
	if fields.DurationWeeks == 0 {
		fields.DurationWeeks = 12
	}

	now := time.Now().UTC()
	res, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO fitness_plans (user_id, session_id, plan_name, plan_type, plan_data, goals, duration_weeks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, sessionID, fields.PlanName, string(planType), string(payload),
		fields.Goals, fields.DurationWeeks,
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		return 0, &StorageError{Op: "save plan", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "save plan", Err: err}
	}

	s.db.log.Info().
		Int64("planId", id).
		Str("userId", userID).
		Str("planType", string(planType)).
		Msg("plan saved")

	return id, nil
}

// ListByUser returns all plans for the given user in insertion order.
func (s *PlanStore) ListByUser(ctx context.Context, userID string) ([]domain.FitnessPlan, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, user_id, session_id, plan_name, plan_type, plan_data, goals, duration_weeks, created_at, updated_at
		 FROM fitness_plans WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, &StorageError{Op: "list plans", Err: err}
	}
	defer rows.Close()

	var plans []domain.FitnessPlan
	for rows.Next() {
		var p domain.FitnessPlan
		var planType, planData, createdAt, updatedAt string
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.SessionID, &p.PlanName, &planType,
			&planData, &p.Goals, &p.DurationWeeks, &createdAt, &updatedAt,
		); err != nil {
			return nil, &StorageError{Op: "list plans", Err: err}
		}
		p.PlanType = domain.PlanType(planType)
		p.PlanData = json.RawMessage(planData)
		p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list plans", Err: err}
	}
	return plans, nil
}
