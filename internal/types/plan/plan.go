package plan

import "time"

// DailyWorkoutPlan and WeeklyWorkoutPlan are an opaque content cache keyed by
// (userId, weekStartDate). The service only decides "has a plan already been
// generated this week"; the plan body is carried through untouched.
type DailyWorkoutPlan struct {
	Day        string   `json:"day" firestore:"day"`
	Focus      string   `json:"focus" firestore:"focus"`
	WorkoutIDs []string `json:"workoutIds" firestore:"workoutIds"`
	IsRestDay  bool     `json:"isRestDay" firestore:"isRestDay"`
}

type WeeklyWorkoutPlan struct {
	ID            string             `json:"id" firestore:"id"`
	UserID        string             `json:"userId" firestore:"userId"`
	WeekStartDate string             `json:"weekStartDate" firestore:"weekStartDate"` // Monday, yyyy-MM-dd
	Days          []DailyWorkoutPlan `json:"days" firestore:"days"`
	GeneratedAt   time.Time          `json:"generatedAt" firestore:"generatedAt"`
}
