package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitgenAPI/internal/types/challenge"
	"fitgenAPI/internal/types/friendship"
	"fitgenAPI/internal/types/plan"
	"fitgenAPI/internal/types/streak"
	"fitgenAPI/internal/types/user"
)

const (
	collectionUsers           = "users"
	collectionDailyChallenges = "daily_challenges"
	collectionUserStreaks     = "user_streaks"
	collectionFriends         = "friends"
	collectionFriendRequests  = "friend_requests"
	collectionWeeklyPlans     = "weekly_workout_plans"
)

// Firestore backs the Store on Cloud Firestore. Documents are flat maps with
// scalar leaves; there are no cross-document transactions, so all invariants
// rest on deterministic keys and idempotent writes.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore initializes the Firestore client from FIREBASE_CREDENTIALS_FILE,
// falling back to application default credentials.
func NewFirestore(ctx context.Context) (*Firestore, error) {
	var opts []option.ClientOption
	if path := os.Getenv("FIREBASE_CREDENTIALS_FILE"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	return &Firestore{client: client}, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func mapCode(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	}
	return err
}

// ---- users ----

func (f *Firestore) CreateUser(ctx context.Context, u *user.User) error {
	_, err := f.client.Collection(collectionUsers).Doc(u.ID).Create(ctx, u)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) GetUser(ctx context.Context, id string) (*user.User, error) {
	doc, err := f.client.Collection(collectionUsers).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapCode(err)
	}
	var u user.User
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return &u, nil
}

func (f *Firestore) UpdateUser(ctx context.Context, u *user.User) error {
	_, err := f.client.Collection(collectionUsers).Doc(u.ID).Set(ctx, u)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) findOneUser(ctx context.Context, field, value string) (*user.User, error) {
	docs, err := f.client.Collection(collectionUsers).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, mapCode(err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var u user.User
	if err := docs[0].DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

func (f *Firestore) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return f.findOneUser(ctx, "username", username)
}

func (f *Firestore) FindUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	return f.findOneUser(ctx, "friendCode", code)
}

func (f *Firestore) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.FindUserByFriendCode(ctx, code)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *Firestore) ListUserIDs(ctx context.Context) ([]string, error) {
	docs, err := f.client.Collection(collectionUsers).Select().Documents(ctx).GetAll()
	if err != nil {
		return nil, mapCode(err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// ---- challenges ----

func (f *Firestore) CreateChallenge(ctx context.Context, c *challenge.DailyChallenge) error {
	key := ChallengeKey(c.UserID, c.Date)
	c.ID = key
	_, err := f.client.Collection(collectionDailyChallenges).Doc(key).Create(ctx, c)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) GetChallenge(ctx context.Context, id string) (*challenge.DailyChallenge, error) {
	doc, err := f.client.Collection(collectionDailyChallenges).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapCode(err)
	}
	var c challenge.DailyChallenge
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to decode challenge %s: %w", id, err)
	}
	return &c, nil
}

func (f *Firestore) GetChallengeForDate(ctx context.Context, userID, date string) (*challenge.DailyChallenge, error) {
	return f.GetChallenge(ctx, ChallengeKey(userID, date))
}

func (f *Firestore) CompleteChallenge(ctx context.Context, id string, at time.Time) error {
	_, err := f.client.Collection(collectionDailyChallenges).Doc(id).Update(ctx, []firestore.Update{
		{Path: "isCompleted", Value: true},
		{Path: "completedAt", Value: at},
	})
	if err != nil {
		return mapCode(err)
	}
	return nil
}

// ---- streaks ----

func (f *Firestore) GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error) {
	doc, err := f.client.Collection(collectionUserStreaks).Doc(userID).Get(ctx)
	if err != nil {
		return nil, mapCode(err)
	}
	var s streak.UserStreak
	if err := doc.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode streak %s: %w", userID, err)
	}
	return &s, nil
}

func (f *Firestore) PutStreak(ctx context.Context, s *streak.UserStreak) error {
	_, err := f.client.Collection(collectionUserStreaks).Doc(s.UserID).Set(ctx, s)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) WatchStreaks(ctx context.Context, userIDs []string) (*StreaksSubscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []*streak.UserStreak, 1)

	query := f.client.Collection(collectionUserStreaks).Where("userId", "in", userIDs)
	go func() {
		defer close(ch)
		it := query.Snapshots(watchCtx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					log.Printf("WatchStreaks: snapshot listener ended: %v", err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("WatchStreaks: failed to read snapshot: %v", err)
				continue
			}
			out := make([]*streak.UserStreak, 0, len(docs))
			for _, doc := range docs {
				var s streak.UserStreak
				if err := doc.DataTo(&s); err != nil {
					log.Printf("WatchStreaks: failed to decode streak: %v", err)
					continue
				}
				out = append(out, &s)
			}
			send(ch, out)
		}
	}()

	return &StreaksSubscription{C: ch, stop: cancel}, nil
}

// ---- friends ----

func (f *Firestore) CreateFriend(ctx context.Context, fr *friendship.Friend) error {
	_, err := f.client.Collection(collectionFriends).Doc(fr.ID).Set(ctx, fr)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	docs, err := f.client.Collection(collectionFriends).
		Where("userId", "==", userID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, mapCode(err)
	}
	return decodeFriends(docs)
}

func (f *Firestore) ListAllFriendEdges(ctx context.Context) ([]*friendship.Friend, error) {
	docs, err := f.client.Collection(collectionFriends).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapCode(err)
	}
	return decodeFriends(docs)
}

func decodeFriends(docs []*firestore.DocumentSnapshot) ([]*friendship.Friend, error) {
	out := make([]*friendship.Friend, 0, len(docs))
	for _, doc := range docs {
		var fr friendship.Friend
		if err := doc.DataTo(&fr); err != nil {
			log.Printf("decodeFriends: skipping malformed edge %s: %v", doc.Ref.ID, err)
			continue
		}
		out = append(out, &fr)
	}
	// Sorted client side; an orderBy here would need a composite index.
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (f *Firestore) DeleteFriendEdge(ctx context.Context, userID, friendID string) error {
	docs, err := f.client.Collection(collectionFriends).
		Where("userId", "==", userID).
		Where("friendId", "==", friendID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return mapCode(err)
	}
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete friend edge %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

func (f *Firestore) FriendshipExists(ctx context.Context, userID, otherID string) (bool, error) {
	forward, err := f.client.Collection(collectionFriends).
		Where("userId", "==", userID).
		Where("friendId", "==", otherID).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, mapCode(err)
	}
	if len(forward) > 0 {
		return true, nil
	}
	reverse, err := f.client.Collection(collectionFriends).
		Where("userId", "==", otherID).
		Where("friendId", "==", userID).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, mapCode(err)
	}
	return len(reverse) > 0, nil
}

func (f *Firestore) UpdateFriendStreaks(ctx context.Context, friendID string, currentStreak int) error {
	docs, err := f.client.Collection(collectionFriends).
		Where("friendId", "==", friendID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return mapCode(err)
	}
	for _, doc := range docs {
		_, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "currentStreak", Value: currentStreak}})
		if err != nil {
			return fmt.Errorf("failed to update edge %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

func (f *Firestore) WatchFriends(ctx context.Context, userID string) (*FriendsSubscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []*friendship.Friend, 1)

	query := f.client.Collection(collectionFriends).Where("userId", "==", userID)
	go func() {
		defer close(ch)
		it := query.Snapshots(watchCtx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					log.Printf("WatchFriends: snapshot listener ended: %v", err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("WatchFriends: failed to read snapshot: %v", err)
				continue
			}
			friends, _ := decodeFriends(docs)
			send(ch, friends)
		}
	}()

	return &FriendsSubscription{C: ch, stop: cancel}, nil
}

// ---- friend requests ----

func (f *Firestore) CreateFriendRequest(ctx context.Context, r *friendship.FriendRequest) error {
	_, err := f.client.Collection(collectionFriendRequests).Doc(r.ID).Create(ctx, r)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) GetFriendRequest(ctx context.Context, id string) (*friendship.FriendRequest, error) {
	doc, err := f.client.Collection(collectionFriendRequests).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapCode(err)
	}
	var r friendship.FriendRequest
	if err := doc.DataTo(&r); err != nil {
		return nil, fmt.Errorf("failed to decode friend request %s: %w", id, err)
	}
	return &r, nil
}

func (f *Firestore) UpdateFriendRequestStatus(ctx context.Context, id string, s friendship.RequestStatus) error {
	_, err := f.client.Collection(collectionFriendRequests).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
	})
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) PendingRequestExists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	docs, err := f.client.Collection(collectionFriendRequests).
		Where("fromUserId", "==", fromUserID).
		Where("toUserId", "==", toUserID).
		Where("status", "==", string(friendship.RequestPending)).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return false, mapCode(err)
	}
	return len(docs) > 0, nil
}

func (f *Firestore) ListPendingRequests(ctx context.Context, toUserID string) ([]*friendship.FriendRequest, error) {
	docs, err := f.pendingRequestDocs(ctx, toUserID)
	if err != nil {
		return nil, err
	}
	return decodeRequests(docs), nil
}

func (f *Firestore) pendingRequestDocs(ctx context.Context, toUserID string) ([]*firestore.DocumentSnapshot, error) {
	docs, err := f.client.Collection(collectionFriendRequests).
		Where("toUserId", "==", toUserID).
		Where("status", "==", string(friendship.RequestPending)).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, mapCode(err)
	}
	return docs, nil
}

func decodeRequests(docs []*firestore.DocumentSnapshot) []*friendship.FriendRequest {
	out := make([]*friendship.FriendRequest, 0, len(docs))
	for _, doc := range docs {
		var r friendship.FriendRequest
		if err := doc.DataTo(&r); err != nil {
			log.Printf("decodeRequests: skipping malformed request %s: %v", doc.Ref.ID, err)
			continue
		}
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (f *Firestore) WatchFriendRequests(ctx context.Context, toUserID string) (*RequestsSubscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []*friendship.FriendRequest, 1)

	query := f.client.Collection(collectionFriendRequests).
		Where("toUserId", "==", toUserID).
		Where("status", "==", string(friendship.RequestPending))
	go func() {
		defer close(ch)
		it := query.Snapshots(watchCtx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if watchCtx.Err() == nil {
					log.Printf("WatchFriendRequests: snapshot listener ended: %v", err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("WatchFriendRequests: failed to read snapshot: %v", err)
				continue
			}
			send(ch, decodeRequests(docs))
		}
	}()

	return &RequestsSubscription{C: ch, stop: cancel}, nil
}

// ---- weekly plans ----

func (f *Firestore) GetWeekPlan(ctx context.Context, userID, weekStart string) (*plan.WeeklyWorkoutPlan, error) {
	doc, err := f.client.Collection(collectionWeeklyPlans).Doc(PlanKey(userID, weekStart)).Get(ctx)
	if err != nil {
		return nil, mapCode(err)
	}
	var p plan.WeeklyWorkoutPlan
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode weekly plan: %w", err)
	}
	return &p, nil
}

func (f *Firestore) PutWeekPlan(ctx context.Context, p *plan.WeeklyWorkoutPlan) error {
	p.ID = PlanKey(p.UserID, p.WeekStartDate)
	_, err := f.client.Collection(collectionWeeklyPlans).Doc(p.ID).Set(ctx, p)
	if err != nil {
		return mapCode(err)
	}
	return nil
}

func (f *Firestore) DeletePlansBefore(ctx context.Context, userID, weekStart string) error {
	docs, err := f.client.Collection(collectionWeeklyPlans).
		Where("userId", "==", userID).
		Where("weekStartDate", "<", weekStart).
		Documents(ctx).
		GetAll()
	if err != nil {
		return mapCode(err)
	}
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete stale plan %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}
