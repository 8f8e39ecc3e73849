package model

import "time"

type Post struct {
	ID        string
	UserID    string
	CampusID  string
	Content   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FeedPost is a post enriched with the author and counters the feed renders.
type FeedPost struct {
	Post
	AuthorUsername  string
	AuthorAvatarURL string
	LikeCount       int
	CommentCount    int
	LikedByViewer   bool
}

type Comment struct {
	ID             string
	PostID         string
	UserID         string
	Content        string
	CreatedAt      time.Time
	AuthorUsername string
}
