package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fitgenAPI/internal/friendcode"
	"fitgenAPI/internal/store"
	"fitgenAPI/internal/types/friendship"
)

var (
	ErrInvalidFriendCode   = errors.New("invalid friend code format, use XXXX-YYYY")
	ErrSelfFriendRequest   = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends      = errors.New("already friends with this user")
	ErrRequestAlreadySent  = errors.New("friend request already sent")
	ErrRequestNotFound     = errors.New("friend request not found")
	ErrNotRequestRecipient = errors.New("you are not the recipient of this request")
	ErrRequestNotPending   = errors.New("friend request is no longer pending")
)

// SocialService owns the friend-request lifecycle and the bidirectional
// friend-edge invariant. Edge pairs are written without a transaction, so the
// service pairs every multi-step mutation with a reconciliation sweep that
// heals one-sided state.
type SocialService struct {
	users    store.UserStore
	friends  store.FriendStore
	requests store.RequestStore
	streaks  store.StreakStore

	mu          sync.Mutex
	friendSubs  map[string]*store.FriendsSubscription
	requestSubs map[string]*store.RequestsSubscription
}

func NewSocialService(users store.UserStore, friends store.FriendStore, requests store.RequestStore, streaks store.StreakStore) *SocialService {
	return &SocialService{
		users:       users,
		friends:     friends,
		requests:    requests,
		streaks:     streaks,
		friendSubs:  make(map[string]*store.FriendsSubscription),
		requestSubs: make(map[string]*store.RequestsSubscription),
	}
}

// SendFriendRequest resolves the target by friend code and creates a PENDING
// request with both usernames snapshotted at send time.
func (s *SocialService) SendFriendRequest(ctx context.Context, fromUserID, toCode string) (*friendship.FriendRequest, error) {
	if !friendcode.IsValidFormat(toCode) {
		return nil, ErrInvalidFriendCode
	}

	toUser, err := s.users.FindUserByFriendCode(ctx, toCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve friend code: %w", err)
	}

	if fromUserID == toUser.ID {
		return nil, ErrSelfFriendRequest
	}

	exists, err := s.friends.FriendshipExists(ctx, fromUserID, toUser.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.requests.PendingRequestExists(ctx, fromUserID, toUser.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrRequestAlreadySent
	}

	fromUser, err := s.users.GetUser(ctx, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	req := &friendship.FriendRequest{
		ID:           uuid.New().String(),
		FromUserID:   fromUserID,
		FromUsername: fromUser.Username,
		ToUserID:     toUser.ID,
		ToUsername:   toUser.Username,
		Status:       friendship.RequestPending,
		Timestamp:    time.Now(),
	}

	if err := s.requests.CreateFriendRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	log.Printf("SendFriendRequest: %s -> %s (request %s)", fromUserID, toUser.ID, req.ID)
	return req, nil
}

// AcceptFriendRequest marks the request accepted and creates both directed
// friend edges. The four sub-steps are not atomic; each failure is wrapped
// with the step it died in, and a later reconciliation sweep completes any
// half-created pair.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, requestID, callerID string) error {
	req, err := s.requests.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("accept request %s: load: %w", requestID, err)
	}

	if req.ToUserID != callerID {
		return ErrNotRequestRecipient
	}
	if req.Status != friendship.RequestPending {
		return ErrRequestNotPending
	}

	// Step 1: flip status first so a replay of this request is rejected as
	// no longer pending.
	if err := s.requests.UpdateFriendRequestStatus(ctx, requestID, friendship.RequestAccepted); err != nil {
		return fmt.Errorf("accept request %s: update status: %w", requestID, err)
	}

	// Step 2: fetch both parties' current usernames.
	fromUser, err := s.users.GetUser(ctx, req.FromUserID)
	if err != nil {
		return fmt.Errorf("accept request %s: load sender %s: %w", requestID, req.FromUserID, err)
	}
	toUser, err := s.users.GetUser(ctx, req.ToUserID)
	if err != nil {
		return fmt.Errorf("accept request %s: load recipient %s: %w", requestID, req.ToUserID, err)
	}

	now := time.Now()

	// Step 3: edge from sender to recipient. New edges always start at streak
	// zero; completion propagation fills in the live value afterwards.
	edge1 := &friendship.Friend{
		ID:             uuid.New().String(),
		UserID:         req.FromUserID,
		FriendID:       req.ToUserID,
		FriendUsername: toUser.Username,
		CurrentStreak:  0,
		AddedAt:        now,
	}
	if err := s.friends.CreateFriend(ctx, edge1); err != nil {
		return fmt.Errorf("accept request %s: create edge %s->%s: %w", requestID, req.FromUserID, req.ToUserID, err)
	}

	// Step 4: reverse edge. A failure here leaves a one-sided friendship for
	// the sweep to finish.
	edge2 := &friendship.Friend{
		ID:             uuid.New().String(),
		UserID:         req.ToUserID,
		FriendID:       req.FromUserID,
		FriendUsername: fromUser.Username,
		CurrentStreak:  0,
		AddedAt:        now,
	}
	if err := s.friends.CreateFriend(ctx, edge2); err != nil {
		return fmt.Errorf("accept request %s: create edge %s->%s: %w", requestID, req.ToUserID, req.FromUserID, err)
	}

	log.Printf("AcceptFriendRequest: %s accepted, edges %s<->%s created", requestID, req.FromUserID, req.ToUserID)
	return nil
}

func (s *SocialService) cachedStreak(ctx context.Context, userID string) int {
	st, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		return 0
	}
	return st.CurrentStreak
}

// RejectFriendRequest flips the request to its terminal REJECTED state. No
// friend edges are touched; the sender may send a fresh request afterwards.
func (s *SocialService) RejectFriendRequest(ctx context.Context, requestID, callerID string) error {
	req, err := s.requests.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("reject request %s: load: %w", requestID, err)
	}

	if req.ToUserID != callerID {
		return ErrNotRequestRecipient
	}
	if req.Status != friendship.RequestPending {
		return ErrRequestNotPending
	}

	if err := s.requests.UpdateFriendRequestStatus(ctx, requestID, friendship.RequestRejected); err != nil {
		return fmt.Errorf("reject request %s: update status: %w", requestID, err)
	}
	return nil
}

// RemoveFriend deletes both directed edges. An edge that is already gone
// counts as removed, which keeps retries and races harmless.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friends.DeleteFriendEdge(ctx, userID, friendID); err != nil {
		return fmt.Errorf("remove friend: delete %s->%s: %w", userID, friendID, err)
	}
	if err := s.friends.DeleteFriendEdge(ctx, friendID, userID); err != nil {
		return fmt.Errorf("remove friend: delete %s->%s: %w", friendID, userID, err)
	}
	log.Printf("RemoveFriend: edges %s<->%s removed", userID, friendID)
	return nil
}

func (s *SocialService) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	if friends == nil {
		friends = []*friendship.Friend{}
	}
	return friends, nil
}

func (s *SocialService) ListPendingRequests(ctx context.Context, userID string) ([]*friendship.FriendRequest, error) {
	requests, err := s.requests.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	if requests == nil {
		requests = []*friendship.FriendRequest{}
	}
	return requests, nil
}

// ObserveFriends subscribes to the caller's friend edges. Re-subscribing for
// the same user replaces the previous subscription so listeners never leak.
func (s *SocialService) ObserveFriends(ctx context.Context, userID string) (*store.FriendsSubscription, error) {
	sub, err := s.friends.WatchFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch friends: %w", err)
	}

	s.mu.Lock()
	if prev, ok := s.friendSubs[userID]; ok {
		prev.Cancel()
	}
	s.friendSubs[userID] = sub
	s.mu.Unlock()

	return sub, nil
}

// ObserveFriendRequests subscribes to pending requests addressed to the
// caller, with the same replace-on-resubscribe rule as ObserveFriends.
func (s *SocialService) ObserveFriendRequests(ctx context.Context, userID string) (*store.RequestsSubscription, error) {
	sub, err := s.requests.WatchFriendRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch friend requests: %w", err)
	}

	s.mu.Lock()
	if prev, ok := s.requestSubs[userID]; ok {
		prev.Cancel()
	}
	s.requestSubs[userID] = sub
	s.mu.Unlock()

	return sub, nil
}

// ReconcileFriendEdges is the recovery pass for half-created friendships: any
// edge whose reverse is missing gets the reverse created. Returns the number
// of edges healed.
func (s *SocialService) ReconcileFriendEdges(ctx context.Context) (int, error) {
	edges, err := s.friends.ListAllFriendEdges(ctx)
	if err != nil {
		return 0, fmt.Errorf("reconcile: failed to list edges: %w", err)
	}

	byPair := make(map[[2]string]*friendship.Friend, len(edges))
	for _, e := range edges {
		byPair[[2]string{e.UserID, e.FriendID}] = e
	}

	healed := 0
	for _, e := range edges {
		if _, ok := byPair[[2]string{e.FriendID, e.UserID}]; ok {
			continue
		}

		owner, err := s.users.GetUser(ctx, e.UserID)
		if err != nil {
			log.Printf("ReconcileFriendEdges: cannot load user %s for edge %s: %v", e.UserID, e.ID, err)
			continue
		}

		reverse := &friendship.Friend{
			ID:             uuid.New().String(),
			UserID:         e.FriendID,
			FriendID:       e.UserID,
			FriendUsername: owner.Username,
			CurrentStreak:  s.cachedStreak(ctx, e.UserID),
			AddedAt:        e.AddedAt,
		}
		if err := s.friends.CreateFriend(ctx, reverse); err != nil {
			log.Printf("ReconcileFriendEdges: failed to heal edge %s->%s: %v", e.FriendID, e.UserID, err)
			continue
		}
		byPair[[2]string{reverse.UserID, reverse.FriendID}] = reverse
		healed++
		log.Printf("ReconcileFriendEdges: created missing edge %s->%s", e.FriendID, e.UserID)
	}

	return healed, nil
}
