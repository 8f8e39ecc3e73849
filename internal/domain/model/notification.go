package model

import "time"

type NotificationKind string

const (
	NotificationLike          NotificationKind = "like"
	NotificationComment       NotificationKind = "comment"
	NotificationFriendRequest NotificationKind = "friend_request"
	NotificationFriendAccept  NotificationKind = "friend_accept"
)

type Notification struct {
	ID        string
	UserID    string
	ActorID   string
	Kind      NotificationKind
	PostID    string
	Read      bool
	CreatedAt time.Time
}
