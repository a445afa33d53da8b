package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fitgenAPI/internal/types/plan"
	"fitgenAPI/middleware"
	"fitgenAPI/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// GetCurrentWeekPlan returns the cached plan for this week. 404 means the
// client should generate a plan and save it back.
func (h *PlanHandler) GetCurrentWeekPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.planService.GetCurrentWeekPlan(ctx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			respondWithError(w, http.StatusNotFound, "No plan for the current week")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PlanHandler) SaveWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body struct {
		Days []plan.DailyWorkoutPlan `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.Days) == 0 {
		respondWithError(w, http.StatusBadRequest, "days must not be empty")
		return
	}

	saved, err := h.planService.SaveWeeklyPlan(ctx, clerkID, body.Days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save plan")
		return
	}

	respondWithJSON(w, http.StatusCreated, saved)
}
