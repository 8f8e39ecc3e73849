package dto

import "time"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	CampusID string `json:"campus_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	CampusID  string `json:"campus_id"`
}

type AuthTokensResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresInSec int64            `json:"expires_in_sec"`
	User         AuthUserResponse `json:"user"`
}

type SessionResponse struct {
	User      AuthUserResponse `json:"user"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
