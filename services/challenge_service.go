package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitgenAPI/internal/challenge"
	"fitgenAPI/internal/store"
	streakengine "fitgenAPI/internal/streak"
	challengetypes "fitgenAPI/internal/types/challenge"
	"fitgenAPI/internal/types/streak"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeNotOwned = errors.New("challenge belongs to another user")
	ErrAlreadyCompleted  = errors.New("challenge already completed")
)

// ChallengeService generates daily challenges and turns completions into
// streak updates. Generation for a given (user, day) is deterministic, so
// concurrent callers always produce the same document and the store collapses
// the duplicate write.
type ChallengeService struct {
	challenges store.ChallengeStore
	streaks    store.StreakStore
	friends    store.FriendStore

	now func() time.Time
}

func NewChallengeService(challenges store.ChallengeStore, streaks store.StreakStore, friends store.FriendStore) *ChallengeService {
	return &ChallengeService{
		challenges: challenges,
		streaks:    streaks,
		friends:    friends,
		now:        time.Now,
	}
}

func (s *ChallengeService) today() string {
	return s.now().Format(streakengine.DateLayout)
}

// GenerateChallengeIfNeeded returns today's challenge for the user, creating
// it when absent. Losing the creation race is fine: the winner wrote the
// identical document, so we re-read it.
func (s *ChallengeService) GenerateChallengeIfNeeded(ctx context.Context, userID string) (*challengetypes.DailyChallenge, error) {
	return s.generateForDate(ctx, userID, s.today())
}

func (s *ChallengeService) generateForDate(ctx context.Context, userID, date string) (*challengetypes.DailyChallenge, error) {
	existing, err := s.challenges.GetChallengeForDate(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing challenge: %w", err)
	}

	c := challenge.Generate(userID, date)
	c.GeneratedAt = s.now()

	if err := s.challenges.CreateChallenge(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.challenges.GetChallengeForDate(ctx, userID, date)
		}
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	log.Printf("GenerateChallengeIfNeeded: created %s for %s (%s %d %s)", c.ID, userID, c.ChallengeType, c.Target, c.Unit)
	return c, nil
}

// GetTodayChallenge returns today's challenge without creating one.
func (s *ChallengeService) GetTodayChallenge(ctx context.Context, userID string) (*challengetypes.DailyChallenge, error) {
	c, err := s.challenges.GetChallengeForDate(ctx, userID, s.today())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	return c, nil
}

// CompleteChallenge marks the challenge done and applies the completion to the
// user's streak. Completing twice is an error, which is what keeps the streak
// from being incremented twice for one day. Propagation of the new streak to
// friend edges is best-effort: its failure is logged, never surfaced, because
// the caller's completion already stuck.
func (s *ChallengeService) CompleteChallenge(ctx context.Context, userID, challengeID string) (*streak.UserStreak, error) {
	c, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge %s: %w", challengeID, err)
	}

	if c.UserID != userID {
		return nil, ErrChallengeNotOwned
	}
	if c.IsCompleted {
		return nil, ErrAlreadyCompleted
	}

	if err := s.challenges.CompleteChallenge(ctx, challengeID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to mark challenge %s completed: %w", challengeID, err)
	}

	prev, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load streak for %s: %w", userID, err)
		}
		prev = &streak.UserStreak{UserID: userID}
	}

	updated := streakengine.Apply(*prev, c.Date)
	updated.LastUpdated = s.now()

	if err := s.streaks.PutStreak(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save streak for %s: %w", userID, err)
	}

	if err := s.friends.UpdateFriendStreaks(ctx, userID, updated.CurrentStreak); err != nil {
		log.Printf("CompleteChallenge: streak propagation for %s failed: %v", userID, err)
	}

	log.Printf("CompleteChallenge: %s completed %s, streak %d -> %d", userID, challengeID, prev.CurrentStreak, updated.CurrentStreak)
	return &updated, nil
}

// GetStreak returns the user's streak, or a zero-value streak for a user who
// has never completed a challenge.
func (s *ChallengeService) GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error) {
	st, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &streak.UserStreak{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load streak for %s: %w", userID, err)
	}
	return st, nil
}

// CheckMissedChallenges expires the user's streak when the last completion is
// more than one day old. Returns whether anything changed; an already dead or
// empty streak is left untouched so the sweep stays idempotent.
func (s *ChallengeService) CheckMissedChallenges(ctx context.Context, userID string) (bool, error) {
	prev, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load streak for %s: %w", userID, err)
	}

	today := s.today()
	if streakengine.Alive(prev.LastCompletedDate, today) || prev.CurrentStreak == 0 {
		return false, nil
	}

	expired := streakengine.Expire(*prev, today)
	expired.LastUpdated = s.now()

	if err := s.streaks.PutStreak(ctx, &expired); err != nil {
		return false, fmt.Errorf("failed to expire streak for %s: %w", userID, err)
	}

	if err := s.friends.UpdateFriendStreaks(ctx, userID, 0); err != nil {
		log.Printf("CheckMissedChallenges: streak propagation for %s failed: %v", userID, err)
	}

	log.Printf("CheckMissedChallenges: expired streak for %s (was %d)", userID, prev.CurrentStreak)
	return true, nil
}
