package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	"github.com/ThisIsMahim/Upp-campus/internal/pkg/validate"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

// AddComment stores a comment and notifies the post author.
func (s *Service) AddComment(ctx context.Context, postID, userID, content string) (model.Comment, error) {
	if strings.TrimSpace(postID) == "" || strings.TrimSpace(userID) == "" {
		return model.Comment{}, ErrValidation
	}
	if s.posts == nil || s.comments == nil {
		return model.Comment{}, ErrDependenciesNil
	}

	content = strings.TrimSpace(content)
	if !validate.CommentContent(content) {
		return model.Comment{}, fmt.Errorf("comment content: %w", ErrValidation)
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return model.Comment{}, err
	}

	comment := model.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	s.notify(ctx, post.UserID, userID, model.NotificationComment, post.ID)

	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, ErrValidation
	}
	if s.comments == nil {
		return nil, ErrDependenciesNil
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) error {
	if strings.TrimSpace(commentID) == "" || strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	if s.comments == nil {
		return ErrDependenciesNil
	}

	if err := s.comments.DeleteOwn(ctx, commentID, userID); err != nil {
		if errors.Is(err, pgrepo.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
