package friendship

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// Friend is one directed edge of a friendship. A full friendship is two
// edges (A→B and B→A) that are created and removed together.
type Friend struct {
	ID             string    `json:"id" firestore:"id"`
	UserID         string    `json:"userId" firestore:"userId"`
	FriendID       string    `json:"friendId" firestore:"friendId"`
	FriendUsername string    `json:"friendUsername" firestore:"friendUsername"`
	CurrentStreak  int       `json:"currentStreak" firestore:"currentStreak"`
	AddedAt        time.Time `json:"addedAt" firestore:"addedAt"`
}

type FriendRequest struct {
	ID           string        `json:"id" firestore:"id"`
	FromUserID   string        `json:"fromUserId" firestore:"fromUserId"`
	FromUsername string        `json:"fromUsername" firestore:"fromUsername"`
	ToUserID     string        `json:"toUserId" firestore:"toUserId"`
	ToUsername   string        `json:"toUsername" firestore:"toUsername"`
	Status       RequestStatus `json:"status" firestore:"status"`
	Timestamp    time.Time     `json:"timestamp" firestore:"timestamp"`
}

type SendFriendRequestRequest struct {
	FriendCode string `json:"friendCode" validate:"required"`
}
