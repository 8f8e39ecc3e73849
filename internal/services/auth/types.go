package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidUsername    = errors.New("invalid username")
)

type SessionRecord struct {
	SID       string
	UserID    string
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    string
	SID       string
	ExpiresAt time.Time
}

type Me struct {
	ID        string
	Email     string
	Username  string
	Bio       string
	AvatarURL string
	CampusID  string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
