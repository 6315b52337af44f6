package plan

import (
	"fmt"
	"strings"
	"time"
)

// Activity levels accepted by GenerateNutrition. Unknown levels use the
// "light" multiplier.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Nutrition goal types.
const (
	NutritionGoalWeightLoss  = "weight_loss"
	NutritionGoalWeightGain  = "weight_gain"
	NutritionGoalMaintenance = "maintenance"
)

// defaultActivityMultiplier applies when the activity level is unrecognized.
const defaultActivityMultiplier = 1.375

var activityMultipliers = map[string]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// macroRatios is the protein/carb/fat calorie split per goal type.
var macroRatios = map[string][3]float64{
	NutritionGoalWeightLoss:  {0.35, 0.35, 0.30},
	NutritionGoalWeightGain:  {0.25, 0.45, 0.30},
	NutritionGoalMaintenance: {0.30, 0.40, 0.30},
}

// NutritionRequest holds the inputs to GenerateNutrition.
type NutritionRequest struct {
	Goals               string  `json:"goals"`
	CurrentWeight       float64 `json:"current_weight"`
	TargetWeight        float64 `json:"target_weight"`
	ActivityLevel       string  `json:"activity_level"`
	DietaryRestrictions string  `json:"dietary_restrictions,omitempty"` // default "none"
}

// Macronutrients holds daily gram targets, formatted as "NNNg".
type Macronutrients struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fats          string `json:"fats"`
}

// NutritionPlan is the generated plan document.
type NutritionPlan struct {
	PlanName            string            `json:"plan_name"`
	Goals               string            `json:"goals"`
	CurrentWeight       float64           `json:"current_weight"`
	TargetWeight        float64           `json:"target_weight"`
	DailyCalories       int               `json:"daily_calories"`
	Macronutrients      Macronutrients    `json:"macronutrients"`
	MealTiming          map[string]string `json:"meal_timing"`
	FoodSuggestions     map[string][]string `json:"food_suggestions"`
	Hydration           string            `json:"hydration"`
	DietaryRestrictions string            `json:"dietary_restrictions"`
	CreatedAt           time.Time         `json:"created_at"`
}

// GenerateNutrition produces a nutrition plan. Calories start from a rough
// weight*10 heuristic, scaled by the activity multiplier and adjusted
// -500/+300 kcal for loss/gain goals.
func GenerateNutrition(req NutritionRequest) NutritionPlan {
	if req.DietaryRestrictions == "" {
		req.DietaryRestrictions = "none"
	}

	baseCalories := req.CurrentWeight * 10

	multiplier, ok := activityMultipliers[strings.ToLower(req.ActivityLevel)]
	if !ok {
		multiplier = defaultActivityMultiplier
	}
	maintenanceCalories := int(baseCalories * multiplier)

	goals := strings.ToLower(req.Goals)
	var dailyCalories int
	var goalType string
	switch {
	case strings.Contains(goals, "weight loss") || req.TargetWeight < req.CurrentWeight:
		dailyCalories = maintenanceCalories - 500 // ~1lb/week loss
		goalType = NutritionGoalWeightLoss
	case strings.Contains(goals, "gain") || req.TargetWeight > req.CurrentWeight:
		dailyCalories = maintenanceCalories + 300 // lean gain
		goalType = NutritionGoalWeightGain
	default:
		dailyCalories = maintenanceCalories
		goalType = NutritionGoalMaintenance
	}

	ratios := macroRatios[goalType]
	proteinGrams := int(float64(dailyCalories) * ratios[0] / 4)
	carbGrams := int(float64(dailyCalories) * ratios[1] / 4)
	fatGrams := int(float64(dailyCalories) * ratios[2] / 9)

	return NutritionPlan{
		PlanName:      fmt.Sprintf("%s Nutrition Plan", titleCategory(goalType)),
		Goals:         req.Goals,
		CurrentWeight: req.CurrentWeight,
		TargetWeight:  req.TargetWeight,
		DailyCalories: dailyCalories,
		Macronutrients: Macronutrients{
			Protein:       fmt.Sprintf("%dg", proteinGrams),
			Carbohydrates: fmt.Sprintf("%dg", carbGrams),
			Fats:          fmt.Sprintf("%dg", fatGrams),
		},
		MealTiming: map[string]string{
			"breakfast": "25% of daily calories",
			"lunch":     "30% of daily calories",
			"dinner":    "30% of daily calories",
			"snacks":    "15% of daily calories",
		},
		FoodSuggestions: map[string][]string{
			"proteins":      {"Chicken breast", "Fish", "Eggs", "Greek yogurt", "Lean beef", "Tofu"},
			"carbohydrates": {"Oats", "Brown rice", "Sweet potatoes", "Quinoa", "Fruits", "Vegetables"},
			"fats":          {"Avocado", "Nuts", "Olive oil", "Fatty fish", "Seeds"},
		},
		Hydration:           "Aim for 8-10 glasses of water daily",
		DietaryRestrictions: req.DietaryRestrictions,
		CreatedAt:           time.Now().UTC(),
	}
}
