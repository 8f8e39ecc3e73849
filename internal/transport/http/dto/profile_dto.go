package dto

import "time"

type ProfileResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CampusID  string    `json:"campus_id"`
	CreatedAt time.Time `json:"created_at"`
}

type EnsureProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	CampusID string `json:"campus_id"`
}

type UpdateProfileRequest struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	CampusID  *string `json:"campus_id"`
}
