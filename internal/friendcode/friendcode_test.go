package friendcode

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeChecker struct {
	taken     map[string]bool
	takenAll  bool
	err       error
	callCount int
}

func (f *fakeChecker) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	f.callCount++
	if f.err != nil {
		return false, f.err
	}
	if f.takenAll {
		return true, nil
	}
	return f.taken[code], nil
}

func TestIsValidFormat(t *testing.T) {
	valid := []string{"F4K9-T2X7", "AAAA-0000", "1234-WXYZ"}
	for _, code := range valid {
		if !IsValidFormat(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}

	invalid := []string{"f4k9-t2x7", "F4K9T2X7", "F4K9-T2X", "F4K9-T2X77", "F4K9_T2X7", "", "F4K!-T2X7"}
	for _, code := range invalid {
		if IsValidFormat(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}

func TestGenerateProducesValidCodes(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := Generate()
		if !IsValidFormat(code) {
			t.Fatalf("generated code %q does not match the format", code)
		}
	}
}

func TestGenerateConcurrently(t *testing.T) {
	// Registration handlers call Generate from concurrent goroutines; every
	// draw must still come out well-formed.
	const goroutines = 8
	const perGoroutine = 500

	codes := make(chan string, goroutines*perGoroutine)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				codes <- Generate()
			}
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if !IsValidFormat(code) {
			t.Fatalf("concurrent generation produced malformed code %q", code)
		}
	}
}

func TestAssignReturnsFirstFreeCode(t *testing.T) {
	checker := &fakeChecker{}

	code, err := Assign(context.Background(), checker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsValidFormat(code) {
		t.Errorf("assigned code %q is not valid", code)
	}
	if checker.callCount != 1 {
		t.Errorf("expected a single uniqueness check, got %d", checker.callCount)
	}
}

func TestAssignRetriesOnCollision(t *testing.T) {
	// First two candidates read as taken, then everything is free.
	checker := &countingChecker{remaining: 2}

	code, err := Assign(context.Background(), checker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsValidFormat(code) {
		t.Errorf("assigned code %q is not valid", code)
	}
	if checker.calls != 3 {
		t.Errorf("expected 3 checks, got %d", checker.calls)
	}
}

type countingChecker struct {
	remaining int
	calls     int
}

func (c *countingChecker) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	c.calls++
	if c.remaining > 0 {
		c.remaining--
		return true, nil
	}
	return false, nil
}

func TestAssignGivesUpAfterMaxAttempts(t *testing.T) {
	checker := &fakeChecker{takenAll: true}

	_, err := Assign(context.Background(), checker)
	if err == nil {
		t.Fatal("expected an error when every code is taken")
	}
	if checker.callCount != maxAttempts {
		t.Errorf("expected exactly %d attempts, got %d", maxAttempts, checker.callCount)
	}
}

func TestAssignPropagatesCheckerError(t *testing.T) {
	boom := errors.New("store down")
	checker := &fakeChecker{err: boom}

	_, err := Assign(context.Background(), checker)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped checker error, got %v", err)
	}
	if checker.callCount != 1 {
		t.Errorf("a checker error must not be retried, got %d calls", checker.callCount)
	}
}
