package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	"github.com/ThisIsMahim/Upp-campus/internal/pkg/validate"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNoCampus        = errors.New("profile has no campus")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDependenciesNil = errors.New("posts dependencies are not configured")
)

type PostStore interface {
	Create(ctx context.Context, post model.Post) error
	Get(ctx context.Context, id string) (model.Post, error)
	ListCampusFeed(ctx context.Context, campusID, viewerID string, limit, offset int) ([]model.FeedPost, error)
	DeleteOwn(ctx context.Context, postID, userID string) error
}

type CommentStore interface {
	Create(ctx context.Context, comment model.Comment) error
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteOwn(ctx context.Context, commentID, userID string) error
}

type LikeStore interface {
	Like(ctx context.Context, postID, userID string) (bool, error)
	Unlike(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context, postID string) (int, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

// Notifier records activity notifications. Notification failures never fail
// the action that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID, actorID string, kind model.NotificationKind, postID string) error
}

type Config struct {
	PageSize    int
	MaxPageSize int
}

type Service struct {
	posts    PostStore
	comments CommentStore
	likes    LikeStore
	profiles ProfileStore
	notifier Notifier
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

func NewService(posts PostStore, comments CommentStore, likes LikeStore, profiles ProfileStore, notifier Notifier, logger *zap.Logger, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		posts:    posts,
		comments: comments,
		likes:    likes,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create publishes a post into the author's campus feed. The campus comes
// from the author's profile, never from the request.
func (s *Service) Create(ctx context.Context, userID, content, imageURL string) (model.Post, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Post{}, ErrValidation
	}
	if s.posts == nil || s.profiles == nil {
		return model.Post{}, ErrDependenciesNil
	}

	content = strings.TrimSpace(content)
	if !validate.PostContent(content) {
		return model.Post{}, fmt.Errorf("post content: %w", ErrValidation)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return model.Post{}, fmt.Errorf("get author profile: %w", err)
	}
	if profile.CampusID == "" {
		return model.Post{}, ErrNoCampus
	}

	post := model.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		CampusID:  profile.CampusID,
		Content:   content,
		ImageURL:  strings.TrimSpace(imageURL),
		CreatedAt: s.now().UTC(),
	}
	post.UpdatedAt = post.CreatedAt

	if err := s.posts.Create(ctx, post); err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	return post, nil
}

// Feed returns one page of the viewer's campus feed.
func (s *Service) Feed(ctx context.Context, viewerID string, limit, offset int) ([]model.FeedPost, error) {
	if strings.TrimSpace(viewerID) == "" {
		return nil, ErrValidation
	}
	if s.posts == nil || s.profiles == nil {
		return nil, ErrDependenciesNil
	}

	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	profile, err := s.profiles.Get(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get viewer profile: %w", err)
	}
	if profile.CampusID == "" {
		return nil, ErrNoCampus
	}

	feed, err := s.posts.ListCampusFeed(ctx, profile.CampusID, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list campus feed: %w", err)
	}
	return feed, nil
}

func (s *Service) Get(ctx context.Context, postID string) (model.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return model.Post{}, ErrValidation
	}
	if s.posts == nil {
		return model.Post{}, ErrDependenciesNil
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, postID, userID string) error {
	if strings.TrimSpace(postID) == "" || strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	if s.posts == nil {
		return ErrDependenciesNil
	}

	if err := s.posts.DeleteOwn(ctx, postID, userID); err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, userID, actorID string, kind model.NotificationKind, postID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, actorID, kind, postID); err != nil {
		s.logger.Warn("notification dropped",
			zap.String("kind", string(kind)),
			zap.String("post_id", postID),
			zap.Error(err),
		)
	}
}
