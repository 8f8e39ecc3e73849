package dto

import "time"

type FriendRequestCreate struct {
	ReceiverID string `json:"receiver_id"`
}

type FriendRequestResponse struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"sender_id"`
	ReceiverID   string    `json:"receiver_id"`
	Status       string    `json:"status"`
	AutoAccepted bool      `json:"auto_accepted,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type FriendRequestsResponse struct {
	Requests []FriendRequestResponse `json:"requests"`
}

type FriendResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CampusID  string    `json:"campus_id"`
	Since     time.Time `json:"since"`
}

type FriendsResponse struct {
	Friends []FriendResponse `json:"friends"`
}
