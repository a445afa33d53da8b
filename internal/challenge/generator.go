package challenge

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"fitgenAPI/internal/types/challenge"
)

// seedVersion is baked into the seed so the mapping from (userId, date) to a
// challenge stays stable across releases. Bump only with a migration plan.
const seedVersion = "v1"

// targets holds the four difficulty tiers per challenge type.
var targets = map[challenge.ChallengeType][]int{
	challenge.TypePushups:          {10, 20, 30, 50},
	challenge.TypeSitups:           {15, 25, 40, 60},
	challenge.TypeSquats:           {20, 30, 50, 75},
	challenge.TypePlank:            {30, 60, 90, 120},
	challenge.TypeRunning:          {2, 3, 5, 7},
	challenge.TypeJumpingJacks:     {30, 50, 75, 100},
	challenge.TypeBurpees:          {10, 15, 20, 30},
	challenge.TypeLunges:           {20, 30, 40, 60},
	challenge.TypeMountainClimbers: {30, 50, 75, 100},
	challenge.TypeCrunches:         {20, 30, 50, 75},
}

var units = map[challenge.ChallengeType]string{
	challenge.TypePushups:          "reps",
	challenge.TypeSitups:           "reps",
	challenge.TypeSquats:           "reps",
	challenge.TypePlank:            "seconds",
	challenge.TypeRunning:          "km",
	challenge.TypeJumpingJacks:     "reps",
	challenge.TypeBurpees:          "reps",
	challenge.TypeLunges:           "reps",
	challenge.TypeMountainClimbers: "reps",
	challenge.TypeCrunches:         "reps",
}

// Seed maps (userId, date) to a stable 64-bit seed. FNV-1a rather than a
// language hash so the same pair yields the same challenge on every platform.
func Seed(userID, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seedVersion + "|" + userID + "|" + date))
	return int64(h.Sum64())
}

// Generate produces the daily challenge for (userId, date). Pure and
// deterministic: no stored state, no clock, no I/O.
func Generate(userID, date string) *challenge.DailyChallenge {
	rng := rand.New(rand.NewSource(Seed(userID, date)))

	kind := challenge.AllTypes[rng.Intn(len(challenge.AllTypes))]
	tiers := targets[kind]
	target := tiers[rng.Intn(len(tiers))]
	unit := units[kind]

	return &challenge.DailyChallenge{
		UserID:        userID,
		ChallengeType: kind,
		Description:   Describe(kind, target),
		Target:        target,
		Unit:          unit,
		Date:          date,
		IsCompleted:   false,
		GeneratedAt:   time.Now(),
	}
}

// Describe renders the human-readable instruction for a challenge.
func Describe(kind challenge.ChallengeType, target int) string {
	switch kind {
	case challenge.TypePushups:
		return fmt.Sprintf("Do %d pushups", target)
	case challenge.TypeSitups:
		return fmt.Sprintf("Do %d situps", target)
	case challenge.TypeSquats:
		return fmt.Sprintf("Do %d squats", target)
	case challenge.TypePlank:
		return fmt.Sprintf("Hold plank for %d seconds", target)
	case challenge.TypeRunning:
		return fmt.Sprintf("Run %d km", target)
	case challenge.TypeJumpingJacks:
		return fmt.Sprintf("Do %d jumping jacks", target)
	case challenge.TypeBurpees:
		return fmt.Sprintf("Do %d burpees", target)
	case challenge.TypeLunges:
		return fmt.Sprintf("Do %d lunges", target)
	case challenge.TypeMountainClimbers:
		return fmt.Sprintf("Do %d mountain climbers", target)
	case challenge.TypeCrunches:
		return fmt.Sprintf("Do %d crunches", target)
	default:
		// The type set is closed; an unmapped type is a programming error.
		panic(fmt.Sprintf("unmapped challenge type %q", kind))
	}
}

// Unit returns the measurement unit for a challenge type.
func Unit(kind challenge.ChallengeType) string {
	return units[kind]
}
