package username

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  @John_Doe  ", "john_doe"},
		{"@alice", "alice"},
		{"BOB99", "bob99"},
		{"plain", "plain"},
		{"  spaced  ", "spaced"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	for _, name := range []string{"abc", "john_doe", "User123", "a_1", "x2345678901234567890"} {
		if err := Validate(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []string{
		"",
		"ab",
		"x23456789012345678901", // 21 characters
		"has space",
		"dash-ed",
		"dot.ted",
		"émile",
	}
	for _, name := range cases {
		if err := Validate(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
