package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInitTimeout    = 5 * time.Second
	DefaultSignOutTimeout = 2 * time.Second

	minUsernameLen = 3
)

type Config struct {
	InitTimeout    time.Duration
	SignOutTimeout time.Duration
}

// Manager orchestrates the session lifecycle against the remote store and
// owns all writes to the local state cache.
type Manager struct {
	store    Store
	profiles ProfileDirectory
	cache    *Cache
	logger   *zap.Logger

	initTimeout    time.Duration
	signOutTimeout time.Duration
	now            func() time.Time

	signingOut   atomic.Bool
	refreshing   atomic.Bool
	initialized  atomic.Bool
	lastActivity atomic.Int64

	unsubscribe func()
	wg          sync.WaitGroup
}

func NewManager(store Store, profiles ProfileDirectory, logger *zap.Logger, cfg Config) *Manager {
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = DefaultInitTimeout
	}
	if cfg.SignOutTimeout <= 0 {
		cfg.SignOutTimeout = DefaultSignOutTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		store:          store,
		profiles:       profiles,
		cache:          NewCache(),
		logger:         logger,
		initTimeout:    cfg.InitTimeout,
		signOutTimeout: cfg.SignOutTimeout,
		now:            time.Now,
	}
	m.lastActivity.Store(time.Now().UnixNano())
	return m
}

func (m *Manager) State() State {
	return m.cache.Read()
}

func (m *Manager) Subscribe() (<-chan State, func()) {
	return m.cache.Subscribe()
}

// Initialize resolves the startup state. It is guaranteed to terminate the
// loading state within the configured timeout even when the remote store
// never responds; the event listener is only installed after the initial
// state is settled.
func (m *Manager) Initialize(ctx context.Context) {
	if !m.initialized.CompareAndSwap(false, true) {
		return
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		session *Session
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		session, err := m.store.CurrentSession(callCtx)
		resCh <- result{session: session, err: err}
	}()

	timer := time.NewTimer(m.initTimeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		if res.err != nil {
			m.logger.Warn("initial session lookup failed", zap.Error(res.err))
			m.cache.write(nil)
		} else {
			m.cache.write(res.session)
		}
	case <-timer.C:
		m.logger.Warn("initial session lookup timed out")
		m.cache.write(nil)
	case <-ctx.Done():
		m.cache.write(nil)
	}

	events, unsubscribe := m.store.SessionChanges()
	m.unsubscribe = unsubscribe
	m.wg.Add(1)
	go m.listen(events)
}

// Close detaches the event listener. Safe to call once after Initialize.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.wg.Wait()
}

func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.cache.setLoading(true)

	session, err := m.store.SignIn(ctx, email, password)
	if err != nil {
		m.cache.write(nil)
		return err
	}

	// The listener's signed-in event covers this write too; it dedupes by
	// user id, so the double write collapses into one.
	m.cache.write(session)
	m.MarkActivity()
	return nil
}

func (m *Manager) SignUp(ctx context.Context, data SignUpData) error {
	data.Username = strings.TrimSpace(data.Username)
	if len([]rune(data.Username)) < minUsernameLen {
		return fmt.Errorf("username must be at least %d characters: %w", minUsernameLen, ErrWeakInput)
	}

	m.cache.setLoading(true)

	session, err := m.store.SignUp(ctx, data)
	if err != nil {
		m.cache.write(nil)
		return err
	}

	// Sign-up's contract is account and profile both existing afterwards,
	// so unlike the listener path a profile failure here is a hard error.
	if err := m.ensureProfile(ctx, session.User); err != nil {
		m.cache.write(nil)
		return fmt.Errorf("create profile: %w", err)
	}

	m.cache.write(session)
	m.MarkActivity()
	return nil
}

// SignOut never returns an error: the user's intent to be logged out
// locally must not be blocked by backend unavailability. The remote call is
// raced against a short timeout and its late outcome is discarded.
func (m *Manager) SignOut(ctx context.Context) {
	if !m.signingOut.CompareAndSwap(false, true) {
		return
	}

	m.cache.setLoading(true)

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.store.SignOut(callCtx)
	}()

	timer := time.NewTimer(m.signOutTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			m.logger.Warn("remote sign-out failed, clearing local state anyway", zap.Error(err))
		}
	case <-timer.C:
		m.logger.Warn("remote sign-out timed out, clearing local state anyway")
	case <-ctx.Done():
	}

	m.cache.write(nil)
	m.signingOut.Store(false)
}

// RefreshSession re-acquires the session. A concurrent call while one is in
// flight returns false immediately without touching the network.
func (m *Manager) RefreshSession(ctx context.Context) bool {
	if !m.refreshing.CompareAndSwap(false, true) {
		return false
	}
	defer m.refreshing.Store(false)

	if session, err := m.store.CurrentSession(ctx); err == nil && session != nil && !session.Expired(m.now()) {
		m.cache.write(session)
		return true
	}

	session, err := m.store.RefreshSession(ctx)
	if err != nil || session == nil {
		if err != nil {
			m.logger.Warn("session refresh failed", zap.Error(err))
		}
		m.cache.write(nil)
		return false
	}

	m.cache.write(session)
	return true
}

func (m *Manager) listen(events <-chan Event) {
	defer m.wg.Done()
	for event := range events {
		m.handleEvent(event)
	}
}

// handleEvent reconciles the cache with one pushed session event. It never
// propagates errors; the listener runs detached from anything the app is
// awaiting.
func (m *Manager) handleEvent(event Event) {
	switch event.Kind {
	case EventSignedIn:
		if event.Session == nil {
			return
		}
		current := m.cache.Read()
		if current.Session != nil && current.Session.User.ID == event.Session.User.ID {
			return
		}
		m.cache.write(event.Session)
		if err := m.ensureProfile(context.Background(), event.Session.User); err != nil {
			m.logger.Warn("best-effort profile creation failed", zap.String("user_id", event.Session.User.ID), zap.Error(err))
		}
	case EventSignedOut:
		if m.signingOut.Load() {
			// The manual sign-out owns this transition.
			return
		}
		if m.cache.Read().Session == nil {
			return
		}
		m.cache.write(nil)
	case EventTokenRefreshed:
		if event.Session == nil {
			return
		}
		m.cache.write(event.Session)
	}
}

// ensureProfile makes sure the user has a profile record. A concurrent
// creation from another client losing the race is benign.
func (m *Manager) ensureProfile(ctx context.Context, user User) error {
	if m.profiles == nil {
		return nil
	}

	_, err := m.profiles.GetProfile(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	createErr := m.profiles.CreateProfile(ctx, Profile{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CampusID:  user.CampusID,
	})
	if createErr != nil && !isDuplicate(createErr) {
		return createErr
	}
	return nil
}
