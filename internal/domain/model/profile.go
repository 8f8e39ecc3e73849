package model

import "time"

type Profile struct {
	UserID    string
	Username  string
	Email     string
	Bio       string
	AvatarURL string
	CampusID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
