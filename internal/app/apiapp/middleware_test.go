package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/redis"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	svc, _, cleanup := newAuthForMiddlewareTest(t)
	defer cleanup()

	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	svc, _, cleanup := newAuthForMiddlewareTest(t)
	defer cleanup()

	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called with a garbage token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	svc, token, cleanup := newAuthForMiddlewareTest(t)
	defer cleanup()

	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != "user-1" {
			t.Fatalf("user id = %q, want user-1", identity.UserID)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

// newAuthForMiddlewareTest builds an auth service over miniredis with one
// live session and returns a valid access token for it.
func newAuthForMiddlewareTest(t *testing.T) (*authsvc.Service, string, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(authsvc.Dependencies{
		JWT:      jwtManager,
		Sessions: sessions,
	}, 45*24*time.Hour, 0)

	refreshToken, err := authsvc.NewRefreshToken()
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	session := authsvc.SessionRecord{
		SID:       "sid-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := sessions.Create(context.Background(), session, refreshToken); err != nil {
		t.Fatalf("create session: %v", err)
	}

	token, _, err := jwtManager.GenerateAccessToken("user-1", "sid-1")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}
	return svc, token, cleanup
}
