package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fitgenAPI/middleware"
	"fitgenAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// GetTodayChallenge returns today's challenge, generating it on first access.
func (h *ChallengeHandler) GetTodayChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	c, err := h.challengeService.GenerateChallengeIfNeeded(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load today's challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *ChallengeHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID := mux.Vars(r)["challengeID"]

	updated, err := h.challengeService.CompleteChallenge(ctx, clerkID, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound):
			respondWithError(w, http.StatusNotFound, "Challenge not found")
		case errors.Is(err, services.ErrChallengeNotOwned):
			respondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrAlreadyCompleted):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to complete challenge")
		}
		return
	}

	middleware.CountChallengeCompletion()
	respondWithJSON(w, http.StatusOK, updated)
}

// CheckMissedChallenges runs the expiry check for the caller on demand, so
// the app can reconcile the streak on foreground instead of waiting for the
// nightly sweep.
func (h *ChallengeHandler) CheckMissedChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	expired, err := h.challengeService.CheckMissedChallenges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to check missed challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"streakExpired": expired})
}

func (h *ChallengeHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.challengeService.GetStreak(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load streak")
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}
