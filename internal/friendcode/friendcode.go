package friendcode

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	charsPerPart = 4
	chars        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts  = 20
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Checker reports whether a friend code is already assigned to some user.
type Checker interface {
	FriendCodeExists(ctx context.Context, code string) (bool, error)
}

// IsValidFormat checks the XXXX-YYYY shape without touching storage, so it
// can run at request-send time.
func IsValidFormat(code string) bool {
	return codePattern.MatchString(code)
}

// Generate returns a random code in XXXX-YYYY format, e.g. F4K9-T2X7.
func Generate() string {
	return randomPart() + "-" + randomPart()
}

func randomPart() string {
	var b strings.Builder
	for i := 0; i < charsPerPart; i++ {
		// Top-level rand.Intn is internally locked; Generate runs from
		// concurrent registration handlers.
		b.WriteByte(chars[rand.Intn(len(chars))])
	}
	return b.String()
}

// Assign produces a code verified unique against the user collection,
// retrying up to a bounded attempt count. With 36^8 combinations exhausting
// the attempts means something is badly wrong, so it is an error rather than
// a silently returned duplicate.
func Assign(ctx context.Context, checker Checker) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := Generate()

		exists, err := checker.FriendCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check friend code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique friend code after %d attempts", maxAttempts)
}
