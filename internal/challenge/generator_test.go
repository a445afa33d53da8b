package challenge

import (
	"testing"

	challengetypes "fitgenAPI/internal/types/challenge"
)

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate("user_abc", "2025-03-10")
	second := Generate("user_abc", "2025-03-10")

	if first.ChallengeType != second.ChallengeType {
		t.Errorf("challenge type differs between runs: %s vs %s", first.ChallengeType, second.ChallengeType)
	}
	if first.Target != second.Target {
		t.Errorf("target differs between runs: %d vs %d", first.Target, second.Target)
	}
	if first.Description != second.Description {
		t.Errorf("description differs between runs: %q vs %q", first.Description, second.Description)
	}
}

func TestGenerateVariesAcrossUsersAndDays(t *testing.T) {
	// Not guaranteed for any single pair, but over a spread of inputs at
	// least one must differ or the seed is broken.
	base := Generate("user_a", "2025-03-10")
	varied := false
	for _, in := range []struct{ user, date string }{
		{"user_b", "2025-03-10"},
		{"user_a", "2025-03-11"},
		{"user_c", "2025-03-12"},
		{"user_d", "2025-03-13"},
	} {
		c := Generate(in.user, in.date)
		if c.ChallengeType != base.ChallengeType || c.Target != base.Target {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("generator produced identical challenges for all inputs")
	}
}

func TestGenerateTargetOnLadder(t *testing.T) {
	for _, date := range []string{"2025-01-01", "2025-06-15", "2025-12-31"} {
		c := Generate("ladder_user", date)

		tiers, ok := targets[c.ChallengeType]
		if !ok {
			t.Fatalf("generated unknown challenge type %s", c.ChallengeType)
		}

		found := false
		for _, tier := range tiers {
			if c.Target == tier {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("target %d for %s is not on its ladder %v", c.Target, c.ChallengeType, tiers)
		}

		if c.Unit != units[c.ChallengeType] {
			t.Errorf("unit %q does not match type %s", c.Unit, c.ChallengeType)
		}
	}
}

func TestGenerateFieldsPopulated(t *testing.T) {
	c := Generate("user_abc", "2025-03-10")

	if c.UserID != "user_abc" {
		t.Errorf("expected userId user_abc, got %s", c.UserID)
	}
	if c.Date != "2025-03-10" {
		t.Errorf("expected date 2025-03-10, got %s", c.Date)
	}
	if c.IsCompleted {
		t.Error("new challenge must not be completed")
	}
	if c.Description == "" {
		t.Error("description must not be empty")
	}
}

func TestDescribeCoversAllTypes(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Describe panicked: %v", r)
		}
	}()
	for _, kind := range challengetypes.AllTypes {
		if Describe(kind, targets[kind][0]) == "" {
			t.Errorf("empty description for %s", kind)
		}
		if Unit(kind) == "" {
			t.Errorf("empty unit for %s", kind)
		}
	}
}

func TestSeedStableAcrossCalls(t *testing.T) {
	if Seed("u", "2025-03-10") != Seed("u", "2025-03-10") {
		t.Error("seed is not stable for identical inputs")
	}
	if Seed("u", "2025-03-10") == Seed("u", "2025-03-11") {
		t.Error("seed collision across adjacent days is suspicious")
	}
}
