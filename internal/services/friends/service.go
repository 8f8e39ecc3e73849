package friends

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfRequest     = errors.New("cannot friend yourself")
	ErrAlreadyFriends  = errors.New("already friends")
	ErrDuplicate       = errors.New("request already pending")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotReceiver     = errors.New("request belongs to another user")
	ErrUserNotFound    = errors.New("user not found")
	ErrDependenciesNil = errors.New("friends dependencies are not configured")
)

type FriendStore interface {
	CreateRequest(ctx context.Context, req model.FriendRequest) error
	GetRequest(ctx context.Context, id string) (model.FriendRequest, error)
	PendingBetween(ctx context.Context, a, b string) (model.FriendRequest, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status model.FriendRequestStatus) error
	CreateFriendshipTx(ctx context.Context, tx pgx.Tx, a, b string) error
	AreFriends(ctx context.Context, a, b string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]model.Friend, error)
	ListPending(ctx context.Context, userID string, incoming bool) ([]model.FriendRequest, error)
	DeleteFriendship(ctx context.Context, a, b string) (bool, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, actorID string, kind model.NotificationKind, postID string) error
}

type Service struct {
	pool     *pgxpool.Pool
	store    FriendStore
	profiles ProfileStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(pool *pgxpool.Pool, store FriendStore, profiles ProfileStore, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		pool:     pool,
		store:    store,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type RequestResult struct {
	Request      model.FriendRequest
	AutoAccepted bool
}

// SendRequest creates a pending request towards the receiver. When the
// receiver already has a pending request towards the sender, the two are
// made friends immediately instead of holding two crossing requests.
func (s *Service) SendRequest(ctx context.Context, senderID, receiverID string) (RequestResult, error) {
	senderID = strings.TrimSpace(senderID)
	receiverID = strings.TrimSpace(receiverID)
	if senderID == "" || receiverID == "" {
		return RequestResult{}, ErrValidation
	}
	if senderID == receiverID {
		return RequestResult{}, ErrSelfRequest
	}
	if s.store == nil || s.pool == nil {
		return RequestResult{}, ErrDependenciesNil
	}

	if s.profiles != nil {
		if _, err := s.profiles.Get(ctx, receiverID); err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return RequestResult{}, ErrUserNotFound
			}
			return RequestResult{}, fmt.Errorf("get receiver profile: %w", err)
		}
	}

	friends, err := s.store.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return RequestResult{}, fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return RequestResult{}, ErrAlreadyFriends
	}

	pending, err := s.store.PendingBetween(ctx, senderID, receiverID)
	switch {
	case err == nil:
		if pending.SenderID == senderID {
			return RequestResult{}, ErrDuplicate
		}
		// The receiver asked first. Accept their request instead of
		// creating a crossing one.
		accepted, err := s.accept(ctx, pending, senderID)
		if err != nil {
			return RequestResult{}, err
		}
		return RequestResult{Request: accepted, AutoAccepted: true}, nil
	case errors.Is(err, pgrepo.ErrRequestNotFound):
		// No pending request, fall through to create one.
	default:
		return RequestResult{}, fmt.Errorf("check pending request: %w", err)
	}

	req := model.FriendRequest{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FriendRequestPending,
		CreatedAt:  s.now().UTC(),
	}
	req.UpdatedAt = req.CreatedAt

	if err := s.store.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, pgrepo.ErrDuplicateRequest) {
			return RequestResult{}, ErrDuplicate
		}
		return RequestResult{}, fmt.Errorf("create friend request: %w", err)
	}

	s.notify(ctx, receiverID, senderID, model.NotificationFriendRequest)

	return RequestResult{Request: req}, nil
}

// Accept moves a pending request to accepted and records the friendship.
// Only the receiver of the request may accept it.
func (s *Service) Accept(ctx context.Context, requestID, userID string) (model.FriendRequest, error) {
	if strings.TrimSpace(requestID) == "" || strings.TrimSpace(userID) == "" {
		return model.FriendRequest{}, ErrValidation
	}
	if s.store == nil || s.pool == nil {
		return model.FriendRequest{}, ErrDependenciesNil
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRequestNotFound) {
			return model.FriendRequest{}, ErrRequestNotFound
		}
		return model.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	if req.ReceiverID != userID {
		return model.FriendRequest{}, ErrNotReceiver
	}
	if req.Status != model.FriendRequestPending {
		return model.FriendRequest{}, ErrRequestNotFound
	}

	return s.accept(ctx, req, userID)
}

func (s *Service) accept(ctx context.Context, req model.FriendRequest, acceptorID string) (model.FriendRequest, error) {
	err := pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.store.UpdateStatusTx(txCtx, tx, req.ID, model.FriendRequestAccepted); err != nil {
			return err
		}
		return s.store.CreateFriendshipTx(txCtx, tx, req.SenderID, req.ReceiverID)
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrRequestNotFound) {
			return model.FriendRequest{}, ErrRequestNotFound
		}
		return model.FriendRequest{}, fmt.Errorf("accept friend request: %w", err)
	}

	req.Status = model.FriendRequestAccepted
	req.UpdatedAt = s.now().UTC()

	s.notify(ctx, req.SenderID, acceptorID, model.NotificationFriendAccept)

	return req, nil
}

// Decline marks a pending request declined. The receiver may decline it.
func (s *Service) Decline(ctx context.Context, requestID, userID string) error {
	if strings.TrimSpace(requestID) == "" || strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	if s.store == nil || s.pool == nil {
		return ErrDependenciesNil
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("get friend request: %w", err)
	}
	if req.ReceiverID != userID {
		return ErrNotReceiver
	}

	err = pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		return s.store.UpdateStatusTx(txCtx, tx, req.ID, model.FriendRequestDeclined)
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("decline friend request: %w", err)
	}
	return nil
}

func (s *Service) ListFriends(ctx context.Context, userID string) ([]model.Friend, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, ErrDependenciesNil
	}

	friends, err := s.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return friends, nil
}

func (s *Service) ListPending(ctx context.Context, userID string, incoming bool) ([]model.FriendRequest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, ErrDependenciesNil
	}

	requests, err := s.store.ListPending(ctx, userID, incoming)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

func (s *Service) Unfriend(ctx context.Context, userID, otherID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(otherID) == "" {
		return ErrValidation
	}
	if s.store == nil {
		return ErrDependenciesNil
	}

	if _, err := s.store.DeleteFriendship(ctx, userID, otherID); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, userID, actorID string, kind model.NotificationKind) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, actorID, kind, ""); err != nil {
		s.logger.Warn("notification dropped",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
