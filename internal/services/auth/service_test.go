package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
	redrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/redis"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
)

func TestSignUpThenSignIn(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	signUpRes, err := svc.SignUp(ctx, authsvc.SignUpInput{
		Email:    "mahim@campus.edu",
		Password: "correct-horse",
		Username: "mahim",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if signUpRes.Me.Username != "mahim" {
		t.Fatalf("unexpected username: %q", signUpRes.Me.Username)
	}

	signInRes, err := svc.SignIn(ctx, "mahim@campus.edu", "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signInRes.Me.ID != signUpRes.Me.ID {
		t.Fatalf("sign in resolved a different user: %q vs %q", signInRes.Me.ID, signUpRes.Me.ID)
	}

	if _, err := svc.SignIn(ctx, "mahim@campus.edu", "wrong-password"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, dir, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	cases := []struct {
		name string
		in   authsvc.SignUpInput
		want error
	}{
		{"bad email", authsvc.SignUpInput{Email: "nope", Password: "long-enough", Username: "mahim"}, authsvc.ErrInvalidEmail},
		{"short password", authsvc.SignUpInput{Email: "a@b.co", Password: "short", Username: "mahim"}, authsvc.ErrWeakPassword},
		{"short username", authsvc.SignUpInput{Email: "a@b.co", Password: "long-enough", Username: "ab"}, authsvc.ErrInvalidUsername},
	}
	for _, tc := range cases {
		if _, err := svc.SignUp(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
	if n := dir.registrations(); n != 0 {
		t.Fatalf("validation failures must not reach the registrar, got %d registrations", n)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	in := authsvc.SignUpInput{Email: "dup@campus.edu", Password: "long-enough", Username: "first"}
	if _, err := svc.SignUp(ctx, in); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	in.Username = "second"
	if _, err := svc.SignUp(ctx, in); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("duplicate email should fail with ErrEmailTaken, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.SignUp(ctx, authsvc.SignUpInput{
		Email:    "rotate@campus.edu",
		Password: "long-enough",
		Username: "rotator",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.SignUp(ctx, authsvc.SignUpInput{
		Email:    "leave@campus.edu",
		Password: "long-enough",
		Username: "leaver",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *memDirectory, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	dir := newMemDirectory()
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(authsvc.Dependencies{
		JWT:       jwtManager,
		Sessions:  sessions,
		Accounts:  dir,
		Profiles:  dir,
		Registrar: dir,
	}, 45*24*time.Hour, 0)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, dir, cleanup
}

// memDirectory keeps accounts and profiles in maps, standing in for the
// postgres repos.
type memDirectory struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	profiles map[string]model.Profile
	created  int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		accounts: make(map[string]model.Account),
		profiles: make(map[string]model.Profile),
	}
}

func (d *memDirectory) CreateAccountAndProfile(_ context.Context, account model.Account, profile model.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[account.Email]; ok {
		return pgrepo.ErrEmailTaken
	}
	for _, p := range d.profiles {
		if p.Username == profile.Username {
			return pgrepo.ErrUsernameTaken
		}
	}

	d.accounts[account.Email] = account
	d.profiles[account.ID] = profile
	d.created++
	return nil
}

func (d *memDirectory) GetByEmail(_ context.Context, email string) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account, ok := d.accounts[email]
	if !ok {
		return model.Account{}, pgrepo.ErrAccountNotFound
	}
	return account, nil
}

func (d *memDirectory) GetByID(_ context.Context, id string) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, account := range d.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return model.Account{}, pgrepo.ErrAccountNotFound
}

func (d *memDirectory) Get(_ context.Context, userID string) (model.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	profile, ok := d.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return profile, nil
}

func (d *memDirectory) registrations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}
