// Package api is the HTTP implementation of the client-side session store
// and profile directory, speaking the backend's JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ThisIsMahim/Upp-campus/internal/client/session"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
)

const defaultTimeout = 15 * time.Second

// eventBuffer bounds the per-subscriber queue; session events are rare, a
// subscriber that falls this far behind is gone anyway.
const eventBuffer = 8

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         session.User
	expiresAt    time.Time

	subMu sync.Mutex
	subs  map[int]chan session.Event
	next  int
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]chan session.Event),
	}
}

var (
	_ session.Store            = (*Client)(nil)
	_ session.ProfileDirectory = (*Client)(nil)
)

func (c *Client) CurrentSession(ctx context.Context) (*session.Session, error) {
	access, _ := c.tokens()
	if access == "" {
		return nil, nil
	}

	var res dto.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, access, &res); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = userFromDTO(res.User)
	c.expiresAt = res.ExpiresAt
	s := c.sessionLocked()
	c.mu.Unlock()
	return s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	var res dto.AuthTokensResponse
	err := c.do(ctx, http.MethodPost, "/auth/signin", dto.SignInRequest{
		Email:    email,
		Password: password,
	}, "", &res)
	if err != nil {
		return nil, err
	}

	s := c.adoptTokens(res)
	c.emit(session.Event{Kind: session.EventSignedIn, Session: s})
	return s, nil
}

func (c *Client) SignUp(ctx context.Context, data session.SignUpData) (*session.Session, error) {
	var res dto.AuthTokensResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", dto.SignUpRequest{
		Email:    data.Email,
		Password: data.Password,
		Username: data.Username,
		Bio:      data.Bio,
		CampusID: data.CampusID,
	}, "", &res)
	if err != nil {
		return nil, err
	}

	s := c.adoptTokens(res)
	c.emit(session.Event{Kind: session.EventSignedIn, Session: s})
	return s, nil
}

// SignOut drops the local tokens before the revoke call so the client is
// logged out even when the backend is unreachable.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	access := c.accessToken
	c.accessToken = ""
	c.refreshToken = ""
	c.user = session.User{}
	c.expiresAt = time.Time{}
	c.mu.Unlock()

	c.emit(session.Event{Kind: session.EventSignedOut})

	if access == "" {
		return nil
	}
	var res dto.LogoutResponse
	return c.do(ctx, http.MethodPost, "/auth/signout", nil, access, &res)
}

func (c *Client) RefreshSession(ctx context.Context) (*session.Session, error) {
	_, refresh := c.tokens()
	if refresh == "" {
		return nil, session.ErrSessionExpired
	}

	var res dto.AuthTokensResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", dto.RefreshRequest{
		RefreshToken: refresh,
	}, "", &res)
	if err != nil {
		return nil, err
	}

	s := c.adoptTokens(res)
	c.emit(session.Event{Kind: session.EventTokenRefreshed, Session: s})
	return s, nil
}

func (c *Client) SessionChanges() (<-chan session.Event, func()) {
	c.subMu.Lock()
	id := c.next
	c.next++
	ch := make(chan session.Event, eventBuffer)
	c.subs[id] = ch
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.subMu.Unlock()
	}
	return ch, cancel
}

func (c *Client) GetProfile(ctx context.Context, userID string) (session.Profile, error) {
	access, _ := c.tokens()
	if access == "" {
		return session.Profile{}, session.ErrSessionExpired
	}

	var res dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/me/profile", nil, access, &res); err != nil {
		return session.Profile{}, err
	}
	if userID != "" && res.UserID != userID {
		return session.Profile{}, session.ErrProfileNotFound
	}
	return session.Profile{
		UserID:    res.UserID,
		Username:  res.Username,
		Email:     res.Email,
		Bio:       res.Bio,
		AvatarURL: res.AvatarURL,
		CampusID:  res.CampusID,
	}, nil
}

// CreateProfile idempotently provisions the profile row. The backend treats
// losing a concurrent creation race as success, so no special casing here.
func (c *Client) CreateProfile(ctx context.Context, profile session.Profile) error {
	access, _ := c.tokens()
	if access == "" {
		return session.ErrSessionExpired
	}

	var res dto.ProfileResponse
	return c.do(ctx, http.MethodPut, "/me/profile", dto.EnsureProfileRequest{
		Username: profile.Username,
		Email:    profile.Email,
		Bio:      profile.Bio,
		CampusID: profile.CampusID,
	}, access, &res)
}

func (c *Client) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) adoptTokens(res dto.AuthTokensResponse) *session.Session {
	c.mu.Lock()
	c.accessToken = res.AccessToken
	c.refreshToken = res.RefreshToken
	c.user = userFromDTO(res.User)
	c.expiresAt = c.now().Add(time.Duration(res.ExpiresInSec) * time.Second)
	s := c.sessionLocked()
	c.mu.Unlock()
	return s
}

func (c *Client) sessionLocked() *session.Session {
	return &session.Session{
		AccessToken:  c.accessToken,
		RefreshToken: c.refreshToken,
		ExpiresAt:    c.expiresAt,
		User:         c.user,
	}
}

func (c *Client) emit(event session.Event) {
	c.subMu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- event:
		default:
			c.logger.Warn("session event dropped, subscriber too slow", zap.String("kind", string(event.Kind)))
		}
	}
	c.subMu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body any, accessToken string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, session.ErrNetwork)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return mapAPIError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, session.ErrNetwork)
	}
	return nil
}

func userFromDTO(u dto.AuthUserResponse) session.User {
	return session.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CampusID:  u.CampusID,
	}
}

// mapAPIError translates the backend's error envelope onto the session
// package's sentinels so callers never see transport-level detail.
func mapAPIError(res *http.Response) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("unexpected status %d: %w", res.StatusCode, session.ErrNetwork)
	}

	var sentinel error
	switch apiErr.Code {
	case "WEAK_INPUT", "VALIDATION_ERROR", "INVALID_REQUEST":
		sentinel = session.ErrWeakInput
	case "DUPLICATE_ACCOUNT":
		sentinel = session.ErrDuplicateAccount
	case "INVALID_CREDENTIALS":
		sentinel = session.ErrInvalidCredentials
	case "SESSION_EXPIRED":
		sentinel = session.ErrSessionExpired
	case "PROFILE_NOT_FOUND", "NOT_FOUND":
		sentinel = session.ErrProfileNotFound
	case "USERNAME_TAKEN":
		sentinel = session.ErrDuplicateProfile
	default:
		return fmt.Errorf("%s: %s: %w", apiErr.Code, apiErr.Message, session.ErrNetwork)
	}
	return fmt.Errorf("%s: %w", apiErr.Message, sentinel)
}
