package streak

import (
	"time"

	"fitgenAPI/internal/types/streak"
)

// DateLayout is the calendar-day representation all streak math runs on.
// Raw timestamps would drift across timezones inside a single day.
const DateLayout = "2006-01-02"

// DaysBetween returns the whole days from date a to date b (both yyyy-MM-dd).
// Negative when b is before a. Unparseable input counts as an unbounded gap
// so it can never extend a streak.
func DaysBetween(a, b string) int {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return int(^uint(0) >> 1) // max int
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// Apply advances the streak state for a challenge completed on date.
// Pure: no I/O, no clock. The transitions:
//
//	never completed  -> current = 1, longest = 1
//	gap == 0         -> unchanged (same-day completion is idempotent)
//	gap == 1         -> current+1, longest = max(longest, current)
//	gap  > 1         -> current = 1, longest untouched
//	gap  < 0         -> unchanged (out-of-order event, never resets a live streak)
func Apply(prev streak.UserStreak, date string) streak.UserStreak {
	next := prev

	if prev.LastCompletedDate == "" {
		next.CurrentStreak = 1
		next.LongestStreak = 1
	} else {
		gap := DaysBetween(prev.LastCompletedDate, date)
		switch {
		case gap == 0:
			return prev
		case gap < 0:
			return prev
		case gap == 1:
			next.CurrentStreak = prev.CurrentStreak + 1
			if next.CurrentStreak > next.LongestStreak {
				next.LongestStreak = next.CurrentStreak
			}
		default:
			next.CurrentStreak = 1
		}
	}

	next.LastCompletedDate = date
	next.TotalChallengesCompleted = prev.TotalChallengesCompleted + 1
	next.LastUpdated = time.Now()
	return next
}

// Alive reports whether the streak is still running as of today: the last
// completion was today or yesterday. A negative gap (clock skew put the last
// completion in the future) counts as alive, matching Apply's treatment of
// out-of-order dates.
func Alive(lastCompletedDate, today string) bool {
	if lastCompletedDate == "" {
		return false
	}
	return DaysBetween(lastCompletedDate, today) <= 1
}

// Expire zeroes the current streak when a day has been missed. Longest streak
// and last completed date stay put; calling it again is a no-op.
func Expire(prev streak.UserStreak, today string) streak.UserStreak {
	if prev.LastCompletedDate == "" {
		return prev
	}
	if Alive(prev.LastCompletedDate, today) || prev.CurrentStreak == 0 {
		return prev
	}
	next := prev
	next.CurrentStreak = 0
	next.LastUpdated = time.Now()
	return next
}
