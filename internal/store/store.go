package store

import (
	"context"
	"errors"
	"time"

	"fitgenAPI/internal/types/challenge"
	"fitgenAPI/internal/types/friendship"
	"fitgenAPI/internal/types/plan"
	"fitgenAPI/internal/types/streak"
	"fitgenAPI/internal/types/user"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Subscriptions deliver the full matching result set on every change, not a
// diff. Channels are conflated: a slow reader only ever misses intermediate
// snapshots, never the latest one. Cancel releases the underlying listener;
// no sends happen after the channel is closed.

type FriendsSubscription struct {
	C    <-chan []*friendship.Friend
	stop func()
}

func (s *FriendsSubscription) Cancel() { s.stop() }

type RequestsSubscription struct {
	C    <-chan []*friendship.FriendRequest
	stop func()
}

func (s *RequestsSubscription) Cancel() { s.stop() }

type StreaksSubscription struct {
	C    <-chan []*streak.UserStreak
	stop func()
}

func (s *StreaksSubscription) Cancel() { s.stop() }

type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	FindUserByUsername(ctx context.Context, username string) (*user.User, error)
	FindUserByFriendCode(ctx context.Context, code string) (*user.User, error)
	FriendCodeExists(ctx context.Context, code string) (bool, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

type ChallengeStore interface {
	// CreateChallenge writes under the deterministic key userId_date and
	// returns ErrAlreadyExists when a racing writer got there first, which
	// is what enforces at-most-one challenge per (user, day) without a
	// transaction.
	CreateChallenge(ctx context.Context, c *challenge.DailyChallenge) error
	GetChallenge(ctx context.Context, id string) (*challenge.DailyChallenge, error)
	GetChallengeForDate(ctx context.Context, userID, date string) (*challenge.DailyChallenge, error)
	CompleteChallenge(ctx context.Context, id string, at time.Time) error
}

type StreakStore interface {
	GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error)
	PutStreak(ctx context.Context, s *streak.UserStreak) error
	WatchStreaks(ctx context.Context, userIDs []string) (*StreaksSubscription, error)
}

type FriendStore interface {
	CreateFriend(ctx context.Context, f *friendship.Friend) error
	ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error)
	ListAllFriendEdges(ctx context.Context) ([]*friendship.Friend, error)
	// DeleteFriendEdge removes the userID→friendID edge; an already absent
	// edge is treated as done, not an error.
	DeleteFriendEdge(ctx context.Context, userID, friendID string) error
	FriendshipExists(ctx context.Context, userID, otherID string) (bool, error)
	// UpdateFriendStreaks rewrites the cached currentStreak on every edge
	// pointing at friendID.
	UpdateFriendStreaks(ctx context.Context, friendID string, currentStreak int) error
	WatchFriends(ctx context.Context, userID string) (*FriendsSubscription, error)
}

type RequestStore interface {
	CreateFriendRequest(ctx context.Context, r *friendship.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*friendship.FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, id string, status friendship.RequestStatus) error
	PendingRequestExists(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListPendingRequests(ctx context.Context, toUserID string) ([]*friendship.FriendRequest, error)
	WatchFriendRequests(ctx context.Context, toUserID string) (*RequestsSubscription, error)
}

type PlanStore interface {
	GetWeekPlan(ctx context.Context, userID, weekStart string) (*plan.WeeklyWorkoutPlan, error)
	PutWeekPlan(ctx context.Context, p *plan.WeeklyWorkoutPlan) error
	DeletePlansBefore(ctx context.Context, userID, weekStart string) error
}

// Store is the full document-store surface the services run on.
type Store interface {
	UserStore
	ChallengeStore
	StreakStore
	FriendStore
	RequestStore
	PlanStore
}
