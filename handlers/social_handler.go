package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"fitgenAPI/internal/types/friendship"
	"fitgenAPI/middleware"
	"fitgenAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type SocialHandler struct {
	socialService *services.SocialService
}

func NewSocialHandler(socialService *services.SocialService) *SocialHandler {
	return &SocialHandler{
		socialService: socialService,
	}
}

func (h *SocialHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req friendship.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.socialService.SendFriendRequest(ctx, clerkID, req.FriendCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFriendCode):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "No user with that friend code")
		case errors.Is(err, services.ErrSelfFriendRequest),
			errors.Is(err, services.ErrAlreadyFriends),
			errors.Is(err, services.ErrRequestAlreadySent):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to send friend request")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *SocialHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, h.socialService.AcceptFriendRequest)
}

func (h *SocialHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.settleRequest(w, r, h.socialService.RejectFriendRequest)
}

func (h *SocialHandler) settleRequest(w http.ResponseWriter, r *http.Request, settle func(context.Context, string, string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	requestID := mux.Vars(r)["requestID"]

	if err := settle(ctx, requestID, clerkID); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			respondWithError(w, http.StatusNotFound, "Friend request not found")
		case errors.Is(err, services.ErrNotRequestRecipient):
			respondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrRequestNotPending):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update friend request")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SocialHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	friendID := mux.Vars(r)["friendID"]

	if err := h.socialService.RemoveFriend(ctx, clerkID, friendID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to remove friend")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SocialHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	friends, err := h.socialService.ListFriends(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load friends")
		return
	}

	respondWithJSON(w, http.StatusOK, friends)
}

func (h *SocialHandler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	requests, err := h.socialService.ListPendingRequests(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load friend requests")
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// FriendsStream upgrades to a WebSocket and pushes the full friends list on
// every change until the client disconnects.
func (h *SocialHandler) FriendsStream(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// The subscription outlives this handler, so it cannot hang off the
	// request context.
	sub, err := h.socialService.ObserveFriends(context.Background(), clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("FriendsStream: upgrade failed: %v", err)
		sub.Cancel()
		return
	}

	go streamSnapshots("friends", conn, sub.C, sub.Cancel)
}

// FriendRequestsStream pushes the caller's pending incoming requests on every
// change.
func (h *SocialHandler) FriendRequestsStream(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := h.socialService.ObserveFriendRequests(context.Background(), clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("FriendRequestsStream: upgrade failed: %v", err)
		sub.Cancel()
		return
	}

	go streamSnapshots("friend_requests", conn, sub.C, sub.Cancel)
}

// streamSnapshots writes each snapshot to the socket as JSON. A read pump
// exists only to notice the client going away; either side ending tears the
// whole thing down.
func streamSnapshots[T any](name string, conn *websocket.Conn, snapshots <-chan T, cancel func()) {
	middleware.StreamOpened(name)
	defer middleware.StreamClosed(name)
	defer conn.Close()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
