package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IstiaqueAhmd/fitness-agent/internal/domain"
	"github.com/IstiaqueAhmd/fitness-agent/internal/plan"
)

// PlanStore persists generated plans. Satisfied by store.PlanStore and
// store.MemoryPlanStore.
type PlanStore interface {
	Save(ctx context.Context, userID, sessionID string, payload json.RawMessage, planType domain.PlanType) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]domain.FitnessPlan, error)
}

// WorkoutTool generates structured workout plans.
type WorkoutTool struct{}

func (t *WorkoutTool) Name() string { return "generate_workout_plan" }

func (t *WorkoutTool) Description() string {
	return "Generate a personalized workout plan based on the user's goals, fitness level and weekly availability"
}

func (t *WorkoutTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"goals": {"type": "string", "description": "Fitness goals, e.g. weight loss, muscle gain, general fitness"},
			"fitness_level": {"type": "string", "enum": ["beginner", "intermediate", "advanced"], "description": "Current fitness level"},
			"available_days": {"type": "integer", "description": "Days per week available for training"},
			"duration_weeks": {"type": "integer", "description": "Plan duration in weeks (default 12)"},
			"equipment": {"type": "string", "description": "Available equipment (default basic)"}
		},
		"required": ["goals", "fitness_level", "available_days"]
	}`)
}

func (t *WorkoutTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var req plan.WorkoutRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("decoding workout arguments: %w", err)
	}
	out, err := json.Marshal(plan.GenerateWorkout(req))
	if err != nil {
		return "", fmt.Errorf("encoding workout plan: %w", err)
	}
	return string(out), nil
}

// NutritionTool generates structured nutrition plans.
type NutritionTool struct{}

func (t *NutritionTool) Name() string { return "generate_nutrition_plan" }

func (t *NutritionTool) Description() string {
	return "Generate a personalized nutrition plan with calorie and macronutrient targets"
}

func (t *NutritionTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"goals": {"type": "string", "description": "Nutrition goals, e.g. weight loss, muscle gain, maintenance"},
			"current_weight": {"type": "number", "description": "Current weight in pounds"},
			"target_weight": {"type": "number", "description": "Target weight in pounds"},
			"activity_level": {"type": "string", "enum": ["sedentary", "light", "moderate", "active", "very_active"], "description": "Daily activity level"},
			"dietary_restrictions": {"type": "string", "description": "Dietary restrictions or preferences (default none)"}
		},
		"required": ["goals", "current_weight", "target_weight", "activity_level"]
	}`)
}

func (t *NutritionTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var req plan.NutritionRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("decoding nutrition arguments: %w", err)
	}
	out, err := json.Marshal(plan.GenerateNutrition(req))
	if err != nil {
		return "", fmt.Errorf("encoding nutrition plan: %w", err)
	}
	return string(out), nil
}

// SavePlanTool persists a generated plan for the calling user.
type SavePlanTool struct {
	Store PlanStore
}

func (t *SavePlanTool) Name() string { return "save_fitness_plan" }

func (t *SavePlanTool) Description() string {
	return "Save a generated fitness plan to the user's account for later retrieval"
}

func (t *SavePlanTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"plan_data": {"type": "object", "description": "The complete plan document to save"},
			"plan_type": {"type": "string", "enum": ["workout", "nutrition", "combined"], "description": "Kind of plan being saved"},
			"plan_name": {"type": "string", "description": "Optional name overriding the one in plan_data"}
		},
		"required": ["plan_data", "plan_type"]
	}`)
}

type savePlanArgs struct {
	UserID    string          `json:"user_id"`
	SessionID string          `json:"session_id"`
	PlanData  json.RawMessage `json:"plan_data"`
	PlanType  string          `json:"plan_type"`
	PlanName  string          `json:"plan_name"`
}

func (t *SavePlanTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if t.Store == nil {
		return "", &MissingDependencyError{Tool: t.Name(), Dependency: "plan storage"}
	}

	var in savePlanArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decoding save arguments: %w", err)
	}
	if len(in.PlanData) == 0 {
		return "", fmt.Errorf("plan_data is required")
	}

	planType := domain.PlanType(in.PlanType)
	if !planType.Valid() {
		planType = domain.PlanTypeCombined
	}

	payload := in.PlanData
	if in.PlanName != "" {
		var doc map[string]any
		if err := json.Unmarshal(payload, &doc); err != nil {
			return "", fmt.Errorf("decoding plan_data: %w", err)
		}
		doc["plan_name"] = in.PlanName
		payload, _ = json.Marshal(doc)
	}

	id, err := t.Store.Save(ctx, in.UserID, in.SessionID, payload, planType)
	if err != nil {
		return "", err
	}

	out, _ := json.Marshal(map[string]any{
		"status":  "success",
		"plan_id": id,
		"message": "Fitness plan saved successfully",
	})
	return string(out), nil
}

// ListPlansTool returns summaries of the calling user's saved plans.
type ListPlansTool struct {
	Store PlanStore
}

func (t *ListPlansTool) Name() string { return "get_user_fitness_plans" }

func (t *ListPlansTool) Description() string {
	return "Retrieve the user's previously saved fitness plans"
}

func (t *ListPlansTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

type listPlansArgs struct {
	UserID string `json:"user_id"`
}

type planSummary struct {
	ID            int64           `json:"id"`
	PlanName      string          `json:"plan_name"`
	PlanType      string          `json:"plan_type"`
	PlanData      json.RawMessage `json:"plan_data"`
	Goals         string          `json:"goals,omitempty"`
	DurationWeeks int             `json:"duration_weeks"`
	CreatedAt     string          `json:"created_at"`
}

func (t *ListPlansTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	if t.Store == nil {
		return "", &MissingDependencyError{Tool: t.Name(), Dependency: "plan storage"}
	}

	var in listPlansArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("decoding list arguments: %w", err)
	}

	plans, err := t.Store.ListByUser(ctx, in.UserID)
	if err != nil {
		return "", err
	}

	summaries := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, planSummary{
			ID:            p.ID,
			PlanName:      p.PlanName,
			PlanType:      string(p.PlanType),
			PlanData:      p.PlanData,
			Goals:         p.Goals,
			DurationWeeks: p.DurationWeeks,
			CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	out, err := json.Marshal(map[string]any{"plans": summaries})
	if err != nil {
		return "", fmt.Errorf("encoding plan list: %w", err)
	}
	return string(out), nil
}
