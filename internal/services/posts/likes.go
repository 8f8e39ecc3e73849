package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
)

// Like marks the post as liked by the user and returns the resulting like
// count. Liking twice is idempotent and only the first like notifies the
// author.
func (s *Service) Like(ctx context.Context, postID, userID string) (int, error) {
	if strings.TrimSpace(postID) == "" || strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	if s.posts == nil || s.likes == nil {
		return 0, ErrDependenciesNil
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return 0, err
	}

	created, err := s.likes.Like(ctx, post.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("like post: %w", err)
	}
	if created {
		s.notify(ctx, post.UserID, userID, model.NotificationLike, post.ID)
	}

	count, err := s.likes.Count(ctx, post.ID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (s *Service) Unlike(ctx context.Context, postID, userID string) (int, error) {
	if strings.TrimSpace(postID) == "" || strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	if s.likes == nil {
		return 0, ErrDependenciesNil
	}

	if _, err := s.likes.Unlike(ctx, postID, userID); err != nil {
		return 0, fmt.Errorf("unlike post: %w", err)
	}

	count, err := s.likes.Count(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
