package leaderboard

type LeaderboardEntry struct {
	UserID                   string `json:"userId"`
	Username                 string `json:"username"`
	CurrentStreak            int    `json:"currentStreak"`
	LongestStreak            int    `json:"longestStreak"`
	TotalChallengesCompleted int    `json:"totalChallengesCompleted"`
	Rank                     int    `json:"rank"`
	IsCurrentUser            bool   `json:"isCurrentUser"`
}
