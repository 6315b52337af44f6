package domain

import (
	"encoding/json"
	"time"
)

// PlanType classifies a saved fitness plan.
type PlanType string

const (
	PlanTypeWorkout   PlanType = "workout"
	PlanTypeNutrition PlanType = "nutrition"
	PlanTypeCombined  PlanType = "combined"
)

// Valid reports whether the plan type is one of the known values.
func (t PlanType) Valid() bool {
	switch t {
	case PlanTypeWorkout, PlanTypeNutrition, PlanTypeCombined:
		return true
	}
	return false
}

// FitnessPlan is a persisted workout or nutrition plan.
// PlanData is kept opaque: it is whatever the generator produced, stored as
// a JSON document and returned verbatim to chat tool responses.
type FitnessPlan struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	SessionID     string          `json:"session_id,omitempty"`
	PlanName      string          `json:"plan_name"`
	PlanType      PlanType        `json:"plan_type"`
	PlanData      json.RawMessage `json:"plan_data"`
	Goals         string          `json:"goals"`
	DurationWeeks int             `json:"duration_weeks"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
