package username

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minLength = 3
	maxLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Format normalizes raw input to the canonical stored form: trimmed,
// @-prefix stripped, lowercase.
func Format(raw string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
}

// Validate checks the canonical format: 3-20 characters, letters, digits and
// underscores only.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(name) < minLength {
		return fmt.Errorf("username must be at least %d characters", minLength)
	}
	if len(name) > maxLength {
		return fmt.Errorf("username must be at most %d characters", maxLength)
	}
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}
	return nil
}
