package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"fitgenAPI/middleware"
	"fitgenAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	board, err := h.leaderboardService.GetLeaderboard(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// LeaderboardStream pushes a re-ranked board every time a member's streak
// changes. The member set is the caller's friend list at connect time.
func (h *LeaderboardHandler) LeaderboardStream(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// The subscription outlives this handler, so it cannot hang off the
	// request context.
	sub, err := h.leaderboardService.ObserveLeaderboard(context.Background(), clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("LeaderboardStream: upgrade failed: %v", err)
		sub.Cancel()
		return
	}

	go streamSnapshots("leaderboard", conn, sub.C, sub.Cancel)
}
