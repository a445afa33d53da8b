package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fitgenAPI/internal/store"
	"fitgenAPI/internal/types/friendship"
	"fitgenAPI/internal/types/streak"
	"fitgenAPI/internal/types/user"
)

func newSocialFixture(t *testing.T) (*store.Memory, *SocialService) {
	t.Helper()
	mem := store.NewMemory()
	return mem, NewSocialService(mem, mem, mem, mem)
}

func seedUser(t *testing.T, mem *store.Memory, id, name, code string) {
	t.Helper()
	err := mem.CreateUser(context.Background(), &user.User{
		ID:         id,
		Username:   name,
		FriendCode: code,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func TestSendFriendRequest(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.FromUserID != "alice" || req.ToUserID != "bob" {
		t.Errorf("wrong parties: %+v", req)
	}
	if req.FromUsername != "alice" || req.ToUsername != "bob" {
		t.Errorf("usernames not snapshotted: %+v", req)
	}
	if req.Status != friendship.RequestPending {
		t.Errorf("expected PENDING, got %s", req.Status)
	}

	pending, err := svc.ListPendingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request for bob, got %d", len(pending))
	}
}

func TestSendFriendRequestRejections(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	if _, err := svc.SendFriendRequest(ctx, "alice", "not a code"); !errors.Is(err, ErrInvalidFriendCode) {
		t.Errorf("expected ErrInvalidFriendCode, got %v", err)
	}
	if _, err := svc.SendFriendRequest(ctx, "alice", "ZZZZ-9999"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown code, got %v", err)
	}
	if _, err := svc.SendFriendRequest(ctx, "alice", "AAAA-1111"); !errors.Is(err, ErrSelfFriendRequest) {
		t.Errorf("expected ErrSelfFriendRequest, got %v", err)
	}

	if _, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222"); !errors.Is(err, ErrRequestAlreadySent) {
		t.Errorf("expected ErrRequestAlreadySent on duplicate, got %v", err)
	}
}

func TestAcceptFriendRequestCreatesBothEdges(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if len(aliceFriends) != 1 || len(bobFriends) != 1 {
		t.Fatalf("expected one edge each way, got %d and %d", len(aliceFriends), len(bobFriends))
	}

	if aliceFriends[0].FriendID != "bob" || aliceFriends[0].FriendUsername != "bob" {
		t.Errorf("alice's edge is wrong: %+v", aliceFriends[0])
	}
	if aliceFriends[0].CurrentStreak != 0 {
		t.Errorf("new friendship must start at streak 0, got %d", aliceFriends[0].CurrentStreak)
	}
	if bobFriends[0].FriendID != "alice" {
		t.Errorf("bob's edge is wrong: %+v", bobFriends[0])
	}

	// The settled request is gone from bob's pending list.
	pending, _ := svc.ListPendingRequests(ctx, "bob")
	if len(pending) != 0 {
		t.Errorf("expected no pending requests after accept, got %d", len(pending))
	}
}

func TestAcceptFriendRequestStartsEdgesAtZeroStreak(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	// Both users already hold live streaks, but a brand-new friendship still
	// begins at zero; completion propagation raises it later.
	if err := mem.PutStreak(ctx, &streak.UserStreak{UserID: "alice", CurrentStreak: 6}); err != nil {
		t.Fatalf("seed alice streak: %v", err)
	}
	if err := mem.PutStreak(ctx, &streak.UserStreak{UserID: "bob", CurrentStreak: 9}); err != nil {
		t.Fatalf("seed bob streak: %v", err)
	}

	req, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if len(aliceFriends) != 1 || len(bobFriends) != 1 {
		t.Fatalf("expected one edge each way, got %d and %d", len(aliceFriends), len(bobFriends))
	}
	if aliceFriends[0].CurrentStreak != 0 {
		t.Errorf("alice's edge should start at 0 despite bob's streak 9, got %d", aliceFriends[0].CurrentStreak)
	}
	if bobFriends[0].CurrentStreak != 0 {
		t.Errorf("bob's edge should start at 0 despite alice's streak 6, got %d", bobFriends[0].CurrentStreak)
	}
}

func TestAcceptFriendRequestOnlyRecipient(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := svc.AcceptFriendRequest(ctx, req.ID, "alice"); !errors.Is(err, ErrNotRequestRecipient) {
		t.Errorf("the sender must not be able to accept, got %v", err)
	}
	if err := svc.AcceptFriendRequest(ctx, req.ID, "mallory"); !errors.Is(err, ErrNotRequestRecipient) {
		t.Errorf("a third party must not be able to accept, got %v", err)
	}
	if err := svc.AcceptFriendRequest(ctx, "no-such-id", "bob"); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestAcceptFriendRequestTwice(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, _ := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("a settled request must not be accepted again, got %v", err)
	}

	// No duplicate edges either.
	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	if len(aliceFriends) != 1 {
		t.Errorf("expected 1 edge, got %d", len(aliceFriends))
	}
}

func TestRejectFriendRequest(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, _ := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")

	if err := svc.RejectFriendRequest(ctx, req.ID, "alice"); !errors.Is(err, ErrNotRequestRecipient) {
		t.Errorf("only the recipient may reject, got %v", err)
	}
	if err := svc.RejectFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// No edges were created.
	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	if len(aliceFriends) != 0 {
		t.Errorf("reject must not create edges, got %d", len(aliceFriends))
	}

	// The sender can try again after a rejection.
	if _, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222"); err != nil {
		t.Errorf("expected a fresh request to be allowed after rejection, got %v", err)
	}
}

func TestSendBlockedWhenAlreadyFriends(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, _ := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if _, err := svc.SendFriendRequest(ctx, "alice", "BBBB-2222"); !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("expected ErrAlreadyFriends, got %v", err)
	}
	// Direction must not matter.
	if _, err := svc.SendFriendRequest(ctx, "bob", "AAAA-1111"); !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("expected ErrAlreadyFriends in reverse direction, got %v", err)
	}
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	req, _ := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if len(aliceFriends) != 0 || len(bobFriends) != 0 {
		t.Errorf("expected both edges gone, got %d and %d", len(aliceFriends), len(bobFriends))
	}

	// Second removal of an absent friendship succeeds.
	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Errorf("repeated removal must be a no-op, got %v", err)
	}
}

func TestReconcileFriendEdgesHealsOneSidedPair(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	// Simulate a crash between the two edge writes: only alice->bob exists.
	err := mem.CreateFriend(ctx, &friendship.Friend{
		ID:             uuid.New().String(),
		UserID:         "alice",
		FriendID:       "bob",
		FriendUsername: "bob",
		AddedAt:        time.Now(),
	})
	if err != nil {
		t.Fatalf("seed edge failed: %v", err)
	}
	if err := mem.PutStreak(ctx, &streak.UserStreak{UserID: "alice", CurrentStreak: 4}); err != nil {
		t.Fatalf("seed streak failed: %v", err)
	}

	healed, err := svc.ReconcileFriendEdges(ctx)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if healed != 1 {
		t.Fatalf("expected 1 healed edge, got %d", healed)
	}

	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if len(bobFriends) != 1 {
		t.Fatalf("expected the reverse edge to exist, got %d", len(bobFriends))
	}
	if bobFriends[0].FriendID != "alice" || bobFriends[0].FriendUsername != "alice" {
		t.Errorf("healed edge is wrong: %+v", bobFriends[0])
	}
	if bobFriends[0].CurrentStreak != 4 {
		t.Errorf("healed edge must carry alice's current streak, got %d", bobFriends[0].CurrentStreak)
	}

	// A complete pair is left alone on the next run.
	healed, err = svc.ReconcileFriendEdges(ctx)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if healed != 0 {
		t.Errorf("expected nothing to heal on the second pass, got %d", healed)
	}
}

func TestObserveFriendsDeliversSnapshots(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")
	seedUser(t, mem, "bob", "bob", "BBBB-2222")

	sub, err := svc.ObserveFriends(ctx, "alice")
	if err != nil {
		t.Fatalf("observe failed: %v", err)
	}
	defer sub.Cancel()

	// Initial snapshot is empty.
	select {
	case snapshot := <-sub.C:
		if len(snapshot) != 0 {
			t.Fatalf("expected empty initial snapshot, got %d entries", len(snapshot))
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}

	req, _ := svc.SendFriendRequest(ctx, "alice", "BBBB-2222")
	if err := svc.AcceptFriendRequest(ctx, req.ID, "bob"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-sub.C:
			if len(snapshot) == 1 && snapshot[0].FriendID == "bob" {
				return
			}
		case <-deadline:
			t.Fatal("never observed the new friendship")
		}
	}
}

func TestObserveFriendsReplacesPreviousSubscription(t *testing.T) {
	mem, svc := newSocialFixture(t)
	ctx := context.Background()
	seedUser(t, mem, "alice", "alice", "AAAA-1111")

	first, err := svc.ObserveFriends(ctx, "alice")
	if err != nil {
		t.Fatalf("first observe failed: %v", err)
	}

	second, err := svc.ObserveFriends(ctx, "alice")
	if err != nil {
		t.Fatalf("second observe failed: %v", err)
	}
	defer second.Cancel()

	// The first subscription's channel must be closed once drained.
	<-first.C // initial snapshot
	if _, open := <-first.C; open {
		t.Error("expected the replaced subscription to be closed")
	}
}
