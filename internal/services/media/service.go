package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported content type")
)

const maxAvatarBytes = 5 << 20

type ProfileStore interface {
	SetAvatar(ctx context.Context, userID, avatarURL string) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type Service struct {
	profiles ProfileStore
	storage  ObjectStorage
	now      func() time.Time
}

func NewService(profiles ProfileStore, storage ObjectStorage) *Service {
	return &Service{
		profiles: profiles,
		storage:  storage,
		now:      time.Now,
	}
}

var allowedAvatarTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// UploadAvatar stores the image and points the user's profile at it. The
// profile write comes after the upload so a failed upload never leaves the
// profile with a dangling URL.
func (s *Service) UploadAvatar(ctx context.Context, userID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	if strings.TrimSpace(userID) == "" || body == nil || size <= 0 {
		return "", ErrValidation
	}
	if s.profiles == nil || s.storage == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}
	if size > maxAvatarBytes {
		return "", ErrTooLarge
	}

	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if _, ok := allowedAvatarTypes[contentType]; !ok {
		return "", ErrUnsupportedType
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := s.buildAvatarObjectKey(userID, fileName)
	if err != nil {
		return "", fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	url := s.storage.PublicURL(objectKey)
	if err := s.profiles.SetAvatar(ctx, userID, url); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return "", fmt.Errorf("set avatar: %w", err)
	}

	return url, nil
}

func (s *Service) buildAvatarObjectKey(userID, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("avatars/%s/%s_%s%s", userID, stamp, hex.EncodeToString(rnd), ext), nil
}
