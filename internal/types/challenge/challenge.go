package challenge

import "time"

type ChallengeType string

const (
	TypePushups          ChallengeType = "pushups"
	TypeSitups           ChallengeType = "situps"
	TypeSquats           ChallengeType = "squats"
	TypePlank            ChallengeType = "plank"
	TypeRunning          ChallengeType = "running"
	TypeJumpingJacks     ChallengeType = "jumping_jacks"
	TypeBurpees          ChallengeType = "burpees"
	TypeLunges           ChallengeType = "lunges"
	TypeMountainClimbers ChallengeType = "mountain_climbers"
	TypeCrunches         ChallengeType = "crunches"
)

// AllTypes is the closed set of challenge kinds. Order matters: the
// deterministic generator indexes into it.
var AllTypes = []ChallengeType{
	TypePushups,
	TypeSitups,
	TypeSquats,
	TypePlank,
	TypeRunning,
	TypeJumpingJacks,
	TypeBurpees,
	TypeLunges,
	TypeMountainClimbers,
	TypeCrunches,
}

type DailyChallenge struct {
	ID            string        `json:"id" firestore:"id"`
	UserID        string        `json:"userId" firestore:"userId"`
	ChallengeType ChallengeType `json:"challengeType" firestore:"challengeType"`
	Description   string        `json:"description" firestore:"description"`
	Target        int           `json:"target" firestore:"target"`
	Unit          string        `json:"unit" firestore:"unit"`
	Date          string        `json:"date" firestore:"date"` // yyyy-MM-dd
	IsCompleted   bool          `json:"isCompleted" firestore:"isCompleted"`
	CompletedAt   time.Time     `json:"completedAt" firestore:"completedAt"`
	GeneratedAt   time.Time     `json:"generatedAt" firestore:"generatedAt"`
}
