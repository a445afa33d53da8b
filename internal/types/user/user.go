package user

import "time"

type User struct {
	ID                 string    `json:"id" firestore:"id"`
	Email              string    `json:"email" firestore:"email"`
	Username           string    `json:"username" firestore:"username"`
	FriendCode         string    `json:"friendCode" firestore:"friendCode"`
	Age                int       `json:"age" firestore:"age"`
	Height             int       `json:"height" firestore:"height"`
	Weight             float64   `json:"weight" firestore:"weight"`
	Goal               string    `json:"goal" firestore:"goal"`
	ActivityLevel      string    `json:"activityLevel" firestore:"activityLevel"`
	Gender             string    `json:"gender" firestore:"gender"`
	WorkoutDaysPerWeek int       `json:"workoutDaysPerWeek" firestore:"workoutDaysPerWeek"`
	CreatedAt          time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" firestore:"updatedAt"`
}

type CompleteRegistrationRequest struct {
	Username           string  `json:"username" validate:"required"`
	Age                int     `json:"age" validate:"gte=13,lte=120"`
	Height             int     `json:"height" validate:"gte=50,lte=300"`
	Weight             float64 `json:"weight" validate:"gte=20,lte=500"`
	Goal               string  `json:"goal" validate:"omitempty,oneof=lose_weight maintain gain_muscle"`
	ActivityLevel      string  `json:"activityLevel" validate:"omitempty,oneof=sedentary lightly_active moderately_active very_active"`
	Gender             string  `json:"gender" validate:"omitempty,oneof=male female"`
	WorkoutDaysPerWeek int     `json:"workoutDaysPerWeek" validate:"omitempty,gte=1,lte=7"`
}

type UpdateProfileRequest struct {
	Age                int     `json:"age" validate:"omitempty,gte=13,lte=120"`
	Height             int     `json:"height" validate:"omitempty,gte=50,lte=300"`
	Weight             float64 `json:"weight" validate:"omitempty,gte=20,lte=500"`
	Goal               string  `json:"goal" validate:"omitempty,oneof=lose_weight maintain gain_muscle"`
	ActivityLevel      string  `json:"activityLevel" validate:"omitempty,oneof=sedentary lightly_active moderately_active very_active"`
	WorkoutDaysPerWeek int     `json:"workoutDaysPerWeek" validate:"omitempty,gte=1,lte=7"`
}
