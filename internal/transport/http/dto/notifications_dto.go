package dto

import "time"

type NotificationResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Kind      string    `json:"kind"`
	PostID    string    `json:"post_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}
