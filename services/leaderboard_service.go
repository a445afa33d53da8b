package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"fitgenAPI/internal/store"
	streakengine "fitgenAPI/internal/streak"
	"fitgenAPI/internal/types/leaderboard"
	"fitgenAPI/internal/types/streak"
)

// LeaderboardSubscription streams ranked snapshots until Cancel is called.
type LeaderboardSubscription struct {
	C    <-chan []*leaderboard.LeaderboardEntry
	stop func()
}

func (s *LeaderboardSubscription) Cancel() { s.stop() }

// LeaderboardService ranks the caller and their friends by current streak.
// Rankings are computed client-of-store: streak documents come in raw and the
// service applies expiry visibility itself, so a user whose streak died
// yesterday shows up as 0 even before the sweep has persisted the reset.
type LeaderboardService struct {
	users   store.UserStore
	friends store.FriendStore
	streaks store.StreakStore

	now func() time.Time

	mu   sync.Mutex
	subs map[string]*LeaderboardSubscription
}

func NewLeaderboardService(users store.UserStore, friends store.FriendStore, streaks store.StreakStore) *LeaderboardService {
	return &LeaderboardService{
		users:   users,
		friends: friends,
		streaks: streaks,
		now:     time.Now,
		subs:    make(map[string]*LeaderboardSubscription),
	}
}

// GetLeaderboard returns a one-shot ranked snapshot for the user and their
// friends. A user with no friends gets a single-entry board.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, userID string) ([]*leaderboard.LeaderboardEntry, error) {
	ids, err := s.memberIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Only members with a streak document appear, same as the live stream:
	// a friend who never completed a challenge has no entry yet.
	raw := make([]*streak.UserStreak, 0, len(ids))
	for _, id := range ids {
		st, err := s.streaks.GetStreak(ctx, id)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("GetLeaderboard: failed to load streak for %s: %v", id, err)
			}
			continue
		}
		raw = append(raw, st)
	}

	return s.rank(ctx, userID, raw), nil
}

// ObserveLeaderboard subscribes to live streak changes for the user and their
// friends and re-ranks on every snapshot. Re-subscribing replaces the user's
// previous subscription. The friend set is fixed at subscribe time; accepting
// a new friend means resubscribing, which the client does on its own friends
// stream anyway.
func (s *LeaderboardService) ObserveLeaderboard(ctx context.Context, userID string) (*LeaderboardSubscription, error) {
	ids, err := s.memberIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	inner, err := s.streaks.WatchStreaks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to watch streaks: %w", err)
	}

	out := make(chan []*leaderboard.LeaderboardEntry, 1)
	sub := &LeaderboardSubscription{C: out, stop: inner.Cancel}

	go func() {
		defer close(out)
		for raw := range inner.C {
			ranked := s.rank(ctx, userID, raw)
			// Conflate: a slow reader only ever sees the latest board.
			select {
			case out <- ranked:
			default:
				select {
				case <-out:
				default:
				}
				out <- ranked
			}
		}
	}()

	s.mu.Lock()
	if prev, ok := s.subs[userID]; ok {
		prev.Cancel()
	}
	s.subs[userID] = sub
	s.mu.Unlock()

	return sub, nil
}

func (s *LeaderboardService) memberIDs(ctx context.Context, userID string) ([]string, error) {
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	ids := make([]string, 0, len(friends)+1)
	ids = append(ids, userID)
	for _, f := range friends {
		ids = append(ids, f.FriendID)
	}
	return ids, nil
}

// rank converts raw streak docs into the ranked board. Dead-but-unpersisted
// streaks are shown as 0 via the same expiry rule the sweep uses.
func (s *LeaderboardService) rank(ctx context.Context, userID string, raw []*streak.UserStreak) []*leaderboard.LeaderboardEntry {
	today := s.now().Format(streakengine.DateLayout)

	entries := make([]*leaderboard.LeaderboardEntry, 0, len(raw))
	for _, st := range raw {
		visible := streakengine.Expire(*st, today)

		username := visible.UserID
		if u, err := s.users.GetUser(ctx, visible.UserID); err == nil {
			username = u.Username
		} else {
			log.Printf("GetLeaderboard: failed to load user %s: %v", visible.UserID, err)
		}

		entries = append(entries, &leaderboard.LeaderboardEntry{
			UserID:                   visible.UserID,
			Username:                 username,
			CurrentStreak:            visible.CurrentStreak,
			LongestStreak:            visible.LongestStreak,
			TotalChallengesCompleted: visible.TotalChallengesCompleted,
			IsCurrentUser:            visible.UserID == userID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CurrentStreak > entries[j].CurrentStreak
	})
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries
}
