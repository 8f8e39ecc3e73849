package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	"github.com/ThisIsMahim/Upp-campus/internal/pkg/validate"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

const (
	MinRefreshTTL = 30 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour

	minBcryptCost = bcrypt.DefaultCost
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id string) (model.Account, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

// Registrar creates the account and its profile together. Sign-up requires
// both rows to exist afterwards, so a profile failure fails the whole
// registration.
type Registrar interface {
	CreateAccountAndProfile(ctx context.Context, account model.Account, profile model.Profile) error
}

type SignUpInput struct {
	Email     string
	Password  string
	Username  string
	Bio       string
	AvatarURL string
	CampusID  string
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	accounts   AccountStore
	profiles   ProfileStore
	registrar  Registrar
	refreshTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

type Dependencies struct {
	JWT       *JWTManager
	Sessions  SessionStore
	Accounts  AccountStore
	Profiles  ProfileStore
	Registrar Registrar
}

func NewService(deps Dependencies, refreshTTL time.Duration, bcryptCost int) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}
	if bcryptCost < minBcryptCost {
		bcryptCost = minBcryptCost
	}

	return &Service{
		jwt:        deps.JWT,
		sessions:   deps.Sessions,
		accounts:   deps.Accounts,
		profiles:   deps.Profiles,
		registrar:  deps.Registrar,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	if !validate.Email(in.Email) {
		return AuthResult{}, ErrInvalidEmail
	}
	if !validate.Password(in.Password) {
		return AuthResult{}, ErrWeakPassword
	}
	if !validate.Username(in.Username) {
		return AuthResult{}, ErrInvalidUsername
	}
	if s.registrar == nil {
		return AuthResult{}, fmt.Errorf("registrar is not configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	userID := uuid.NewString()
	account := model.Account{
		ID:           userID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	profile := model.Profile{
		UserID:    userID,
		Username:  strings.TrimSpace(in.Username),
		Email:     account.Email,
		Bio:       strings.TrimSpace(in.Bio),
		AvatarURL: strings.TrimSpace(in.AvatarURL),
		CampusID:  strings.TrimSpace(in.CampusID),
	}

	if err := s.registrar.CreateAccountAndProfile(ctx, account, profile); err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrEmailTaken):
			return AuthResult{}, ErrEmailTaken
		case errors.Is(err, pgrepo.ErrUsernameTaken):
			return AuthResult{}, ErrUsernameTaken
		}
		return AuthResult{}, fmt.Errorf("create account and profile: %w", err)
	}

	return s.issueForUser(ctx, Me{
		ID:        userID,
		Email:     account.Email,
		Username:  profile.Username,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		CampusID:  profile.CampusID,
	})
}

func (s *Service) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}
	if s.accounts == nil {
		return AuthResult{}, fmt.Errorf("account store is not configured")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get account by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueForUser(ctx, s.meFor(ctx, account))
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	newExpiresAt := s.now().Add(s.refreshTTL)
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, newExpiresAt); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	me := Me{ID: session.UserID}
	if s.accounts != nil {
		if account, err := s.accounts.GetByID(ctx, session.UserID); err == nil {
			me = s.meFor(ctx, account)
		}
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		Me:            me,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

// CurrentSession resolves the access token into the user it belongs to,
// for clients re-checking their state on startup.
func (s *Service) CurrentSession(ctx context.Context, accessToken string) (Me, time.Time, error) {
	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return Me{}, time.Time{}, err
	}

	me := Me{ID: claims.UserID}
	if s.accounts != nil {
		if account, err := s.accounts.GetByID(ctx, claims.UserID); err == nil {
			me = s.meFor(ctx, account)
		}
	}

	return me, claims.ExpiresAt, nil
}

func (s *Service) issueForUser(ctx context.Context, me Me) (AuthResult, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionExpiresAt := s.now().Add(s.refreshTTL)
	session := SessionRecord{
		SID:       sessionID,
		UserID:    me.ID,
		ExpiresAt: sessionExpiresAt,
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(me.ID, sessionID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		Me:            me,
	}, nil
}

func (s *Service) meFor(ctx context.Context, account model.Account) Me {
	me := Me{
		ID:    account.ID,
		Email: account.Email,
	}
	if s.profiles == nil {
		return me
	}

	profile, err := s.profiles.Get(ctx, account.ID)
	if err != nil {
		return me
	}

	me.Username = profile.Username
	me.Bio = profile.Bio
	me.AvatarURL = profile.AvatarURL
	me.CampusID = profile.CampusID
	return me
}
