package streak

import "time"

type UserStreak struct {
	UserID                   string    `json:"userId" firestore:"userId"`
	CurrentStreak            int       `json:"currentStreak" firestore:"currentStreak"`
	LongestStreak            int       `json:"longestStreak" firestore:"longestStreak"`
	LastCompletedDate        string    `json:"lastCompletedDate" firestore:"lastCompletedDate"` // yyyy-MM-dd, empty if never completed
	TotalChallengesCompleted int       `json:"totalChallengesCompleted" firestore:"totalChallengesCompleted"`
	LastUpdated              time.Time `json:"lastUpdated" firestore:"lastUpdated"`
}
