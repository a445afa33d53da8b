package streak

import (
	"testing"

	"fitgenAPI/internal/types/streak"
)

func TestApplyFirstCompletion(t *testing.T) {
	got := Apply(streak.UserStreak{UserID: "u"}, "2025-03-10")

	if got.CurrentStreak != 1 {
		t.Errorf("expected current streak 1, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 1 {
		t.Errorf("expected longest streak 1, got %d", got.LongestStreak)
	}
	if got.LastCompletedDate != "2025-03-10" {
		t.Errorf("expected last completed 2025-03-10, got %s", got.LastCompletedDate)
	}
	if got.TotalChallengesCompleted != 1 {
		t.Errorf("expected total 1, got %d", got.TotalChallengesCompleted)
	}
}

func TestApplyConsecutiveDays(t *testing.T) {
	st := streak.UserStreak{UserID: "u"}
	for _, date := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		st = Apply(st, date)
	}

	if st.CurrentStreak != 3 {
		t.Errorf("expected current streak 3 after three consecutive days, got %d", st.CurrentStreak)
	}
	if st.LongestStreak != 3 {
		t.Errorf("expected longest streak 3, got %d", st.LongestStreak)
	}
	if st.TotalChallengesCompleted != 3 {
		t.Errorf("expected total 3, got %d", st.TotalChallengesCompleted)
	}
}

func TestApplySkippedDayResets(t *testing.T) {
	// Complete days 1, 2, 3, skip day 4, complete day 5.
	st := streak.UserStreak{UserID: "u"}
	for _, date := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		st = Apply(st, date)
	}
	st = Apply(st, "2025-03-05")

	if st.CurrentStreak != 1 {
		t.Errorf("expected current streak 1 after a skipped day, got %d", st.CurrentStreak)
	}
	if st.LongestStreak != 3 {
		t.Errorf("longest streak must survive the reset, got %d", st.LongestStreak)
	}
	if st.TotalChallengesCompleted != 4 {
		t.Errorf("expected total 4, got %d", st.TotalChallengesCompleted)
	}
}

func TestApplySameDayIsIdempotent(t *testing.T) {
	st := Apply(streak.UserStreak{UserID: "u"}, "2025-03-10")
	again := Apply(st, "2025-03-10")

	if again.CurrentStreak != st.CurrentStreak {
		t.Errorf("same-day completion changed current streak: %d -> %d", st.CurrentStreak, again.CurrentStreak)
	}
	if again.TotalChallengesCompleted != st.TotalChallengesCompleted {
		t.Errorf("same-day completion changed total: %d -> %d", st.TotalChallengesCompleted, again.TotalChallengesCompleted)
	}
}

func TestApplyOutOfOrderDateIsNoOp(t *testing.T) {
	st := streak.UserStreak{UserID: "u"}
	st = Apply(st, "2025-03-10")
	st = Apply(st, "2025-03-11")

	got := Apply(st, "2025-03-09")
	if got.CurrentStreak != 2 {
		t.Errorf("an out-of-order date must not reset a live streak, got %d", got.CurrentStreak)
	}
	if got.LastCompletedDate != "2025-03-11" {
		t.Errorf("last completed must stay 2025-03-11, got %s", got.LastCompletedDate)
	}
}

func TestAlive(t *testing.T) {
	cases := []struct {
		last, today string
		want        bool
	}{
		{"2025-03-10", "2025-03-10", true},
		{"2025-03-10", "2025-03-11", true},
		{"2025-03-10", "2025-03-12", false},
		{"2025-03-11", "2025-03-10", true}, // clock skew: future completion stays alive
		{"", "2025-03-10", false},
		{"garbage", "2025-03-10", false},
	}
	for _, c := range cases {
		if got := Alive(c.last, c.today); got != c.want {
			t.Errorf("Alive(%q, %q) = %v, want %v", c.last, c.today, got, c.want)
		}
	}
}

func TestExpireZeroesOnlyCurrentStreak(t *testing.T) {
	prev := streak.UserStreak{
		UserID:                   "u",
		CurrentStreak:            5,
		LongestStreak:            8,
		LastCompletedDate:        "2025-03-10",
		TotalChallengesCompleted: 20,
	}

	got := Expire(prev, "2025-03-13")
	if got.CurrentStreak != 0 {
		t.Errorf("expected current streak 0 after expiry, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 8 {
		t.Errorf("longest streak must not change, got %d", got.LongestStreak)
	}
	if got.LastCompletedDate != "2025-03-10" {
		t.Errorf("last completed must not change, got %s", got.LastCompletedDate)
	}
	if got.TotalChallengesCompleted != 20 {
		t.Errorf("total must not change, got %d", got.TotalChallengesCompleted)
	}
}

func TestExpireLeavesLiveStreakAlone(t *testing.T) {
	prev := streak.UserStreak{UserID: "u", CurrentStreak: 3, LastCompletedDate: "2025-03-10"}

	if got := Expire(prev, "2025-03-11"); got.CurrentStreak != 3 {
		t.Errorf("yesterday's completion is still alive, got %d", got.CurrentStreak)
	}
	if got := Expire(prev, "2025-03-10"); got.CurrentStreak != 3 {
		t.Errorf("today's completion is alive, got %d", got.CurrentStreak)
	}
}

func TestExpireLeavesFutureDatedStreakAlone(t *testing.T) {
	// Clock skew: the last completion is dated after today. Apply treats the
	// out-of-order event as inert, so expiry must not zero it either.
	prev := streak.UserStreak{UserID: "u", CurrentStreak: 3, LastCompletedDate: "2025-03-12"}

	if got := Expire(prev, "2025-03-10"); got.CurrentStreak != 3 {
		t.Errorf("a future-dated completion must not be expired, got %d", got.CurrentStreak)
	}
}

func TestExpireIsIdempotent(t *testing.T) {
	prev := streak.UserStreak{UserID: "u", CurrentStreak: 3, LastCompletedDate: "2025-03-01"}

	once := Expire(prev, "2025-03-10")
	twice := Expire(once, "2025-03-10")
	if twice != once {
		t.Errorf("second expiry changed state: %+v -> %+v", once, twice)
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween("2025-03-10", "2025-03-12"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := DaysBetween("2025-03-12", "2025-03-10"); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}
	if got := DaysBetween("not-a-date", "2025-03-10"); got <= 1 {
		t.Errorf("unparseable input must behave as an unbounded gap, got %d", got)
	}
}
