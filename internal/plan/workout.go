// Package plan generates workout and nutrition plans from a handful of
// user parameters. Generators are pure functions: template lookup plus
// arithmetic, no I/O.
package plan

import (
	"fmt"
	"strings"
	"time"
)

// Fitness levels accepted by GenerateWorkout. Unknown levels fall back to
// the beginner templates rather than erroring.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Goal categories derived from free-text goals.
const (
	GoalWeightLoss     = "weight_loss"
	GoalMuscleGain     = "muscle_gain"
	GoalGeneralFitness = "general_fitness"
)

// WorkoutRequest holds the inputs to GenerateWorkout.
type WorkoutRequest struct {
	Goals         string `json:"goals"`
	FitnessLevel  string `json:"fitness_level"`
	AvailableDays int    `json:"available_days"`
	DurationWeeks int    `json:"duration_weeks,omitempty"` // default 12
	Equipment     string `json:"equipment,omitempty"`      // default "basic"
}

// ExerciseParameters describes per-session training parameters.
type ExerciseParameters struct {
	Sets                string `json:"sets"`
	Reps                string `json:"reps"`
	RestPeriods         string `json:"rest_periods"`
	ExercisesPerSession int    `json:"exercises_per_session"`
}

// WorkoutPlan is the generated plan document. Its JSON form is the plan
// payload persisted by the store and echoed into tool results.
type WorkoutPlan struct {
	PlanName           string             `json:"plan_name"`
	Goals              string             `json:"goals"`
	FitnessLevel       string             `json:"fitness_level"`
	DurationWeeks      int                `json:"duration_weeks"`
	AvailableDays      int                `json:"available_days"`
	EquipmentNeeded    string             `json:"equipment_needed"`
	Structure          string             `json:"structure"`
	WeeklySchedule     map[string]string  `json:"weekly_schedule"`
	ExerciseParameters ExerciseParameters `json:"exercise_parameters"`
	ProgressionNotes   string             `json:"progression_notes"`
	CreatedAt          time.Time          `json:"created_at"`
}

// workoutTemplate is one entry of the fixed template table.
type workoutTemplate struct {
	structure       string
	exercisesPerDay int
	sets            string
	reps            string
	rest            string
}

var workoutTemplates = map[string]map[string]workoutTemplate{
	LevelBeginner: {
		GoalWeightLoss: {
			structure:       "3-day full body",
			exercisesPerDay: 6,
			sets:            "2-3",
			reps:            "12-15",
			rest:            "60-90 seconds",
		},
		GoalMuscleGain: {
			structure:       "3-day full body",
			exercisesPerDay: 7,
			sets:            "3-4",
			reps:            "8-12",
			rest:            "90-120 seconds",
		},
		GoalGeneralFitness: {
			structure:       "3-day full body",
			exercisesPerDay: 6,
			sets:            "2-3",
			reps:            "10-15",
			rest:            "60-90 seconds",
		},
	},
	LevelIntermediate: {
		GoalWeightLoss: {
			structure:       "4-day upper/lower split",
			exercisesPerDay: 7,
			sets:            "3-4",
			reps:            "10-15",
			rest:            "60-90 seconds",
		},
		GoalMuscleGain: {
			structure:       "4-day push/pull/legs",
			exercisesPerDay: 8,
			sets:            "3-4",
			reps:            "6-12",
			rest:            "90-120 seconds",
		},
	},
	LevelAdvanced: {
		GoalWeightLoss: {
			structure:       "5-6 day split",
			exercisesPerDay: 8,
			sets:            "4-5",
			reps:            "8-15",
			rest:            "45-90 seconds",
		},
		GoalMuscleGain: {
			structure:       "5-6 day body part split",
			exercisesPerDay: 9,
			sets:            "4-5",
			reps:            "6-12",
			rest:            "90-120 seconds",
		},
	},
}

var weeklySchedules = map[string]map[string]string{
	GoalWeightLoss: {
		"Day 1": "Full Body Strength + 20min Cardio",
		"Day 2": "Rest or Light Walking",
		"Day 3": "Full Body Strength + 15min HIIT",
		"Day 4": "Rest or Yoga",
		"Day 5": "Full Body Strength + 20min Cardio",
		"Day 6": "Active Recovery",
		"Day 7": "Rest",
	},
	GoalMuscleGain: {
		"Day 1": "Upper Body (Push)",
		"Day 2": "Lower Body",
		"Day 3": "Rest",
		"Day 4": "Upper Body (Pull)",
		"Day 5": "Full Body",
		"Day 6": "Rest",
		"Day 7": "Rest",
	},
	GoalGeneralFitness: {
		"Day 1": "Full Body Workout",
		"Day 2": "Rest or Light Activity",
		"Day 3": "Full Body Workout",
		"Day 4": "Rest",
		"Day 5": "Full Body Workout",
		"Day 6": "Active Recovery",
		"Day 7": "Rest",
	},
}

// ClassifyGoal maps free-text goals to a goal category by case-insensitive
// substring match. Weight-loss keywords take precedence over muscle-gain
// ones; anything else is general fitness.
func ClassifyGoal(goals string) string {
	g := strings.ToLower(goals)
	switch {
	case strings.Contains(g, "weight loss") || strings.Contains(g, "lose weight"):
		return GoalWeightLoss
	case strings.Contains(g, "muscle") || strings.Contains(g, "gain") || strings.Contains(g, "bulk"):
		return GoalMuscleGain
	default:
		return GoalGeneralFitness
	}
}

// GenerateWorkout produces a workout plan from the request. Unknown fitness
// levels and (level, category) pairs without a template fall back to the
// beginner general-fitness template.
//
// Fewer than 3 available days yields an empty weekly schedule.
func GenerateWorkout(req WorkoutRequest) WorkoutPlan {
	if req.DurationWeeks <= 0 {
		req.DurationWeeks = 12
	}
	if req.Equipment == "" {
		req.Equipment = "basic"
	}

	category := ClassifyGoal(req.Goals)

	levelTemplates, ok := workoutTemplates[req.FitnessLevel]
	if !ok {
		levelTemplates = workoutTemplates[LevelBeginner]
	}
	tmpl, ok := levelTemplates[category]
	if !ok {
		tmpl = workoutTemplates[LevelBeginner][GoalGeneralFitness]
	}

	schedule := map[string]string{}
	if req.AvailableDays >= 3 {
		for day, activity := range weeklySchedules[category] {
			schedule[day] = activity
		}
	}

	return WorkoutPlan{
		PlanName:        fmt.Sprintf("%s %s Plan", titleWord(req.FitnessLevel), titleCategory(category)),
		Goals:           req.Goals,
		FitnessLevel:    req.FitnessLevel,
		DurationWeeks:   req.DurationWeeks,
		AvailableDays:   req.AvailableDays,
		EquipmentNeeded: req.Equipment,
		Structure:       tmpl.structure,
		WeeklySchedule:  schedule,
		ExerciseParameters: ExerciseParameters{
			Sets:                tmpl.sets,
			Reps:                tmpl.reps,
			RestPeriods:         tmpl.rest,
			ExercisesPerSession: tmpl.exercisesPerDay,
		},
		ProgressionNotes: "Increase weight by 2.5-5lbs when you can complete all sets with good form",
		CreatedAt:        time.Now().UTC(),
	}
}

// titleWord uppercases the first letter of a single word.
func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// titleCategory turns "weight_loss" into "Weight Loss".
func titleCategory(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}
