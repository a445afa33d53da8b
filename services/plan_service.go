package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitgenAPI/internal/store"
	streakengine "fitgenAPI/internal/streak"
	"fitgenAPI/internal/types/plan"
)

var ErrPlanNotFound = errors.New("no plan for the current week")

// PlanService caches one workout plan per user per calendar week. Weeks start
// on Monday; the plan body is opaque to the backend.
type PlanService struct {
	plans store.PlanStore

	now func() time.Time
}

func NewPlanService(plans store.PlanStore) *PlanService {
	return &PlanService{plans: plans, now: time.Now}
}

// WeekStart returns the Monday of the week containing t, as yyyy-MM-dd.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(streakengine.DateLayout)
}

// GetCurrentWeekPlan returns the cached plan for this week, or ErrPlanNotFound
// when none has been saved yet, which is the client's cue to generate one.
func (s *PlanService) GetCurrentWeekPlan(ctx context.Context, userID string) (*plan.WeeklyWorkoutPlan, error) {
	weekStart := WeekStart(s.now())
	p, err := s.plans.GetWeekPlan(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan for week %s: %w", weekStart, err)
	}
	return p, nil
}

// SaveWeeklyPlan stores the plan under the current week and drops plans from
// earlier weeks, so at most one plan per user survives.
func (s *PlanService) SaveWeeklyPlan(ctx context.Context, userID string, days []plan.DailyWorkoutPlan) (*plan.WeeklyWorkoutPlan, error) {
	weekStart := WeekStart(s.now())

	if err := s.plans.DeletePlansBefore(ctx, userID, weekStart); err != nil {
		return nil, fmt.Errorf("failed to prune old plans: %w", err)
	}

	p := &plan.WeeklyWorkoutPlan{
		ID:            store.PlanKey(userID, weekStart),
		UserID:        userID,
		WeekStartDate: weekStart,
		Days:          days,
		GeneratedAt:   s.now(),
	}
	if err := s.plans.PutWeekPlan(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return p, nil
}
