package dto

import "time"

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type PostResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CampusID        string    `json:"campus_id"`
	Content         string    `json:"content"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
	AuthorUsername  string    `json:"author_username,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
	LikeCount       int       `json:"like_count"`
	CommentCount    int       `json:"comment_count"`
	LikedByViewer   bool      `json:"liked_by_viewer"`
}

type FeedResponse struct {
	Posts  []PostResponse `json:"posts"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID             string    `json:"id"`
	PostID         string    `json:"post_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"author_username,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

type LikeResponse struct {
	PostID    string `json:"post_id"`
	LikeCount int    `json:"like_count"`
}
