package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"fitgenAPI/internal/types/challenge"
	"fitgenAPI/internal/types/friendship"
	"fitgenAPI/internal/types/plan"
	"fitgenAPI/internal/types/streak"
	"fitgenAPI/internal/types/user"
)

// ChallengeKey is the deterministic document key for a daily challenge.
// Deriving it from (userId, date) makes concurrent creates for the same day
// collapse into one document.
func ChallengeKey(userID, date string) string {
	return userID + "_" + date
}

// PlanKey keys a weekly plan by owner and week start.
func PlanKey(userID, weekStart string) string {
	return userID + "_" + weekStart
}

// Memory is an in-process Store with the same snapshot-subscription semantics
// as the Firestore backend. It backs the service tests and local development.
type Memory struct {
	mu sync.RWMutex

	users      map[string]*user.User
	challenges map[string]*challenge.DailyChallenge
	streaks    map[string]*streak.UserStreak
	friends    map[string]*friendship.Friend
	requests   map[string]*friendship.FriendRequest
	plans      map[string]*plan.WeeklyWorkoutPlan

	nextSubID   int
	friendSubs  map[int]*memFriendsSub
	requestSubs map[int]*memRequestsSub
	streakSubs  map[int]*memStreaksSub
}

type memFriendsSub struct {
	userID string
	ch     chan []*friendship.Friend
}

type memRequestsSub struct {
	toUserID string
	ch       chan []*friendship.FriendRequest
}

type memStreaksSub struct {
	userIDs map[string]bool
	ch      chan []*streak.UserStreak
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]*user.User),
		challenges:  make(map[string]*challenge.DailyChallenge),
		streaks:     make(map[string]*streak.UserStreak),
		friends:     make(map[string]*friendship.Friend),
		requests:    make(map[string]*friendship.FriendRequest),
		plans:       make(map[string]*plan.WeeklyWorkoutPlan),
		friendSubs:  make(map[int]*memFriendsSub),
		requestSubs: make(map[int]*memRequestsSub),
		streakSubs:  make(map[int]*memStreaksSub),
	}
}

// ---- users ----

func (m *Memory) CreateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UpdateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.FriendCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.FindUserByFriendCode(ctx, code)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ---- challenges ----

func (m *Memory) CreateChallenge(ctx context.Context, c *challenge.DailyChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ChallengeKey(c.UserID, c.Date)
	if _, ok := m.challenges[key]; ok {
		return ErrAlreadyExists
	}
	cp := *c
	cp.ID = key
	m.challenges[key] = &cp
	c.ID = key
	return nil
}

func (m *Memory) GetChallenge(ctx context.Context, id string) (*challenge.DailyChallenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) GetChallengeForDate(ctx context.Context, userID, date string) (*challenge.DailyChallenge, error) {
	return m.GetChallenge(ctx, ChallengeKey(userID, date))
}

func (m *Memory) CompleteChallenge(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[id]
	if !ok {
		return ErrNotFound
	}
	c.IsCompleted = true
	c.CompletedAt = at
	return nil
}

// ---- streaks ----

func (m *Memory) GetStreak(ctx context.Context, userID string) (*streak.UserStreak, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.streaks[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) PutStreak(ctx context.Context, s *streak.UserStreak) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.streaks[s.UserID] = &cp
	m.notifyStreakSubs()
	return nil
}

func (m *Memory) WatchStreaks(ctx context.Context, userIDs []string) (*StreaksSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		ids[id] = true
	}

	sub := &memStreaksSub{userIDs: ids, ch: make(chan []*streak.UserStreak, 1)}
	id := m.nextSubID
	m.nextSubID++
	m.streakSubs[id] = sub

	sub.ch <- m.streakSnapshot(sub)

	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.streakSubs[id]; ok {
			delete(m.streakSubs, id)
			close(sub.ch)
		}
	}
	return &StreaksSubscription{C: sub.ch, stop: stop}, nil
}

func (m *Memory) streakSnapshot(sub *memStreaksSub) []*streak.UserStreak {
	var out []*streak.UserStreak
	for id := range sub.userIDs {
		if s, ok := m.streaks[id]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *Memory) notifyStreakSubs() {
	for _, sub := range m.streakSubs {
		send(sub.ch, m.streakSnapshot(sub))
	}
}

// ---- friends ----

func (m *Memory) CreateFriend(ctx context.Context, f *friendship.Friend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.friends[f.ID] = &cp
	m.notifyFriendSubs()
	return nil
}

func (m *Memory) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.friendsOf(userID), nil
}

func (m *Memory) friendsOf(userID string) []*friendship.Friend {
	var out []*friendship.Friend
	for _, f := range m.friends {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out
}

func (m *Memory) ListAllFriendEdges(ctx context.Context) ([]*friendship.Friend, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*friendship.Friend, 0, len(m.friends))
	for _, f := range m.friends {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) DeleteFriendEdge(ctx context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := false
	for id, f := range m.friends {
		if f.UserID == userID && f.FriendID == friendID {
			delete(m.friends, id)
			changed = true
		}
	}
	if changed {
		m.notifyFriendSubs()
	}
	return nil
}

func (m *Memory) FriendshipExists(ctx context.Context, userID, otherID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.friends {
		if (f.UserID == userID && f.FriendID == otherID) || (f.UserID == otherID && f.FriendID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateFriendStreaks(ctx context.Context, friendID string, currentStreak int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := false
	for _, f := range m.friends {
		if f.FriendID == friendID {
			f.CurrentStreak = currentStreak
			changed = true
		}
	}
	if changed {
		m.notifyFriendSubs()
	}
	return nil
}

func (m *Memory) WatchFriends(ctx context.Context, userID string) (*FriendsSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &memFriendsSub{userID: userID, ch: make(chan []*friendship.Friend, 1)}
	id := m.nextSubID
	m.nextSubID++
	m.friendSubs[id] = sub

	sub.ch <- m.friendsOf(userID)

	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.friendSubs[id]; ok {
			delete(m.friendSubs, id)
			close(sub.ch)
		}
	}
	return &FriendsSubscription{C: sub.ch, stop: stop}, nil
}

func (m *Memory) notifyFriendSubs() {
	for _, sub := range m.friendSubs {
		send(sub.ch, m.friendsOf(sub.userID))
	}
}

// ---- friend requests ----

func (m *Memory) CreateFriendRequest(ctx context.Context, r *friendship.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.requests[r.ID] = &cp
	m.notifyRequestSubs()
	return nil
}

func (m *Memory) GetFriendRequest(ctx context.Context, id string) (*friendship.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) UpdateFriendRequestStatus(ctx context.Context, id string, status friendship.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	m.notifyRequestSubs()
	return nil
}

func (m *Memory) PendingRequestExists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.FromUserID == fromUserID && r.ToUserID == toUserID && r.Status == friendship.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListPendingRequests(ctx context.Context, toUserID string) ([]*friendship.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingFor(toUserID), nil
}

func (m *Memory) pendingFor(toUserID string) []*friendship.FriendRequest {
	var out []*friendship.FriendRequest
	for _, r := range m.requests {
		if r.ToUserID == toUserID && r.Status == friendship.RequestPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (m *Memory) WatchFriendRequests(ctx context.Context, toUserID string) (*RequestsSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &memRequestsSub{toUserID: toUserID, ch: make(chan []*friendship.FriendRequest, 1)}
	id := m.nextSubID
	m.nextSubID++
	m.requestSubs[id] = sub

	sub.ch <- m.pendingFor(toUserID)

	stop := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.requestSubs[id]; ok {
			delete(m.requestSubs, id)
			close(sub.ch)
		}
	}
	return &RequestsSubscription{C: sub.ch, stop: stop}, nil
}

func (m *Memory) notifyRequestSubs() {
	for _, sub := range m.requestSubs {
		send(sub.ch, m.pendingFor(sub.toUserID))
	}
}

// ---- weekly plans ----

func (m *Memory) GetWeekPlan(ctx context.Context, userID, weekStart string) (*plan.WeeklyWorkoutPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[PlanKey(userID, weekStart)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) PutWeekPlan(ctx context.Context, p *plan.WeeklyWorkoutPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.ID = PlanKey(p.UserID, p.WeekStartDate)
	m.plans[cp.ID] = &cp
	p.ID = cp.ID
	return nil
}

func (m *Memory) DeletePlansBefore(ctx context.Context, userID, weekStart string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, p := range m.plans {
		if p.UserID == userID && p.WeekStartDate < weekStart {
			delete(m.plans, key)
		}
	}
	return nil
}

// send conflates: if the reader has not drained the previous snapshot it is
// replaced by the newer one instead of blocking the writer.
func send[T any](ch chan []*T, snapshot []*T) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
