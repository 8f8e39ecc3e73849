package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestUploadAvatarRejectsOversize(t *testing.T) {
	svc, _, _ := newMediaServiceForTest(t)

	body := bytes.NewReader([]byte("img"))
	if _, err := svc.UploadAvatar(context.Background(), "u1", "a.png", "image/png", body, maxAvatarBytes+1); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestUploadAvatarRejectsContentType(t *testing.T) {
	svc, _, _ := newMediaServiceForTest(t)

	body := bytes.NewReader([]byte("%PDF"))
	if _, err := svc.UploadAvatar(context.Background(), "u1", "a.pdf", "application/pdf", body, 4); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUploadAvatarSetsProfileURL(t *testing.T) {
	svc, profiles, storage := newMediaServiceForTest(t)

	body := bytes.NewReader([]byte("imagedata"))
	url, err := svc.UploadAvatar(context.Background(), "u1", "selfie.JPG", "image/jpeg", body, 9)
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if url == "" {
		t.Fatalf("empty avatar url")
	}
	if profiles.avatars["u1"] != url {
		t.Fatalf("profile avatar = %q, want %q", profiles.avatars["u1"], url)
	}
	if len(storage.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(storage.objects))
	}
	for key := range storage.objects {
		if !strings.HasPrefix(key, "avatars/u1/") || !strings.HasSuffix(key, ".jpg") {
			t.Fatalf("unexpected object key %q", key)
		}
	}
}

func TestUploadAvatarCleansUpOnProfileFailure(t *testing.T) {
	svc, profiles, storage := newMediaServiceForTest(t)
	profiles.err = errors.New("profile gone")

	body := bytes.NewReader([]byte("imagedata"))
	if _, err := svc.UploadAvatar(context.Background(), "u1", "a.png", "image/png", body, 9); err == nil {
		t.Fatalf("expected error when profile write fails")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("object should be deleted after profile failure, %d left", len(storage.objects))
	}
}

func newMediaServiceForTest(t *testing.T) (*Service, *fakeAvatarProfiles, *fakeObjectStorage) {
	t.Helper()

	profiles := &fakeAvatarProfiles{avatars: map[string]string{}}
	storage := &fakeObjectStorage{objects: map[string][]byte{}}
	return NewService(profiles, storage), profiles, storage
}

type fakeAvatarProfiles struct {
	avatars map[string]string
	err     error
}

func (f *fakeAvatarProfiles) SetAvatar(_ context.Context, userID, avatarURL string) error {
	if f.err != nil {
		return f.err
	}
	f.avatars[userID] = avatarURL
	return nil
}

type fakeObjectStorage struct {
	objects map[string][]byte
}

func (f *fakeObjectStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeObjectStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStorage) PublicURL(key string) string {
	return "http://storage.local/avatars-bucket/" + key
}

func (f *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}
