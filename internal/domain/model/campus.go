package model

import "time"

type Campus struct {
	ID          string
	Name        string
	ShortName   string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}
