package model

import "time"

// Account is the authentication principal. The application-level record
// (username, bio, avatar, campus) lives in Profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
