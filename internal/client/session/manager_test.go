package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore is a hook-driven Store double. Unset hooks answer "no session".
type fakeStore struct {
	currentFn func(ctx context.Context) (*Session, error)
	signInFn  func(ctx context.Context, email, password string) (*Session, error)
	signUpFn  func(ctx context.Context, data SignUpData) (*Session, error)
	signOutFn func(ctx context.Context) error
	refreshFn func(ctx context.Context) (*Session, error)

	mu     sync.Mutex
	calls  map[string]int
	events chan Event
	once   sync.Once
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:  make(map[string]int),
		events: make(chan Event),
	}
}

func (f *fakeStore) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) CurrentSession(ctx context.Context) (*Session, error) {
	f.record("current")
	if f.currentFn != nil {
		return f.currentFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) SignIn(ctx context.Context, email, password string) (*Session, error) {
	f.record("signin")
	if f.signInFn != nil {
		return f.signInFn(ctx, email, password)
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeStore) SignUp(ctx context.Context, data SignUpData) (*Session, error) {
	f.record("signup")
	if f.signUpFn != nil {
		return f.signUpFn(ctx, data)
	}
	return nil, ErrNetwork
}

func (f *fakeStore) SignOut(ctx context.Context) error {
	f.record("signout")
	if f.signOutFn != nil {
		return f.signOutFn(ctx)
	}
	return nil
}

func (f *fakeStore) RefreshSession(ctx context.Context) (*Session, error) {
	f.record("refresh")
	if f.refreshFn != nil {
		return f.refreshFn(ctx)
	}
	return nil, ErrSessionExpired
}

func (f *fakeStore) SessionChanges() (<-chan Event, func()) {
	return f.events, func() {
		f.once.Do(func() { close(f.events) })
	}
}

type fakeDirectory struct {
	mu          sync.Mutex
	profiles    map[string]Profile
	createErr   error
	getCalls    int
	createCalls int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{profiles: make(map[string]Profile)}
}

func (f *fakeDirectory) GetProfile(_ context.Context, userID string) (Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return Profile{}, ErrProfileNotFound
}

func (f *fakeDirectory) CreateProfile(_ context.Context, profile Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeDirectory) counts() (gets, creates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.createCalls
}

func sessionFor(userID string) *Session {
	return &Session{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         User{ID: userID, Email: userID + "@nstu.edu.bd", Username: "user_" + userID},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitializeRestoresSession(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()

	m.Initialize(context.Background())

	state := m.State()
	if !state.IsAuthenticated || state.Session == nil || state.User == nil {
		t.Fatalf("expected restored session, got %+v", state)
	}
	if state.IsLoading {
		t.Fatalf("loading must be settled after initialize")
	}
	if state.User.ID != "u1" {
		t.Fatalf("user id = %q, want u1", state.User.ID)
	}
}

func TestInitializeSettlesDespiteHungStore(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(ctx context.Context) (*Session, error) {
		<-ctx.Done() // never answers on its own
		return nil, ErrNetwork
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{InitTimeout: 50 * time.Millisecond})
	defer m.Close()

	start := time.Now()
	m.Initialize(context.Background())

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("initialize took %v, must settle near the timeout", elapsed)
	}
	state := m.State()
	if state.IsLoading {
		t.Fatalf("loading must be settled even when the store hangs")
	}
	if state.IsAuthenticated {
		t.Fatalf("a hung store must resolve to signed-out")
	}
}

func TestInitializeErrorResolvesSignedOut(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return nil, ErrNetwork
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()

	m.Initialize(context.Background())

	state := m.State()
	if state.IsAuthenticated || state.IsLoading {
		t.Fatalf("expected settled signed-out state, got %+v", state)
	}
}

func TestInitializeRunsOnce(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()

	m.Initialize(context.Background())
	m.Initialize(context.Background())

	if got := store.callCount("current"); got != 1 {
		t.Fatalf("current session looked up %d times, want 1", got)
	}
}

func TestSignInSuccessAndFailure(t *testing.T) {
	store := newFakeStore()
	store.signInFn = func(_ context.Context, email, password string) (*Session, error) {
		if password != "s3cret-pass" {
			return nil, ErrInvalidCredentials
		}
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	if err := m.SignIn(context.Background(), "u1@nstu.edu.bd", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if state := m.State(); state.IsAuthenticated || state.IsLoading {
		t.Fatalf("failed sign-in must leave settled signed-out state, got %+v", state)
	}

	if err := m.SignIn(context.Background(), "u1@nstu.edu.bd", "s3cret-pass"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	state := m.State()
	if !state.IsAuthenticated || state.User.ID != "u1" {
		t.Fatalf("expected authenticated u1, got %+v", state)
	}
}

func TestSignUpRejectsShortUsernameWithoutNetwork(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	err := m.SignUp(context.Background(), SignUpData{
		Email:    "u1@nstu.edu.bd",
		Password: "s3cret-pass",
		Username: "  ab  ",
	})
	if !errors.Is(err, ErrWeakInput) {
		t.Fatalf("expected ErrWeakInput, got %v", err)
	}
	if got := store.callCount("signup"); got != 0 {
		t.Fatalf("short username must be rejected before any network call, got %d calls", got)
	}
}

func TestSignUpCreatesProfile(t *testing.T) {
	store := newFakeStore()
	store.signUpFn = func(_ context.Context, data SignUpData) (*Session, error) {
		s := sessionFor("u1")
		s.User.Username = data.Username
		return s, nil
	}
	dir := newFakeDirectory()
	m := NewManager(store, dir, nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	if err := m.SignUp(context.Background(), SignUpData{
		Email:    "u1@nstu.edu.bd",
		Password: "s3cret-pass",
		Username: "mahim",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, creates := dir.counts(); creates != 1 {
		t.Fatalf("profile created %d times, want 1", creates)
	}
	if state := m.State(); !state.IsAuthenticated {
		t.Fatalf("expected authenticated state after sign-up")
	}
}

func TestSignUpDuplicateProfileIsBenign(t *testing.T) {
	store := newFakeStore()
	store.signUpFn = func(context.Context, SignUpData) (*Session, error) {
		return sessionFor("u1"), nil
	}
	dir := newFakeDirectory()
	dir.createErr = ErrDuplicateProfile
	m := NewManager(store, dir, nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	if err := m.SignUp(context.Background(), SignUpData{
		Email:    "u1@nstu.edu.bd",
		Password: "s3cret-pass",
		Username: "mahim",
	}); err != nil {
		t.Fatalf("losing the profile-creation race must not fail sign-up: %v", err)
	}
}

func TestSignUpProfileFailureIsHardError(t *testing.T) {
	store := newFakeStore()
	store.signUpFn = func(context.Context, SignUpData) (*Session, error) {
		return sessionFor("u1"), nil
	}
	dir := newFakeDirectory()
	dir.createErr = ErrNetwork
	m := NewManager(store, dir, nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	err := m.SignUp(context.Background(), SignUpData{
		Email:    "u1@nstu.edu.bd",
		Password: "s3cret-pass",
		Username: "mahim",
	})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected profile failure to surface, got %v", err)
	}
	if state := m.State(); state.IsAuthenticated {
		t.Fatalf("sign-up without a profile must not end authenticated")
	}
}

func TestSignOutClearsLocallyDespiteSlowBackend(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return sessionFor("u1"), nil
	}
	store.signOutFn = func(ctx context.Context) error {
		<-ctx.Done() // backend never answers
		return ErrNetwork
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{SignOutTimeout: 50 * time.Millisecond})
	defer m.Close()
	m.Initialize(context.Background())

	start := time.Now()
	m.SignOut(context.Background())

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("sign-out took %v, must settle near the timeout", elapsed)
	}
	state := m.State()
	if state.IsAuthenticated || state.Session != nil || state.IsLoading {
		t.Fatalf("sign-out must clear local state regardless of the backend, got %+v", state)
	}
}

func TestSignOutRacingSignedOutEvent(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.SignOut(context.Background())
	}()
	go func() {
		defer wg.Done()
		store.events <- Event{Kind: EventSignedOut}
	}()
	wg.Wait()

	waitFor(t, "settled signed-out state", func() bool {
		state := m.State()
		return !state.IsAuthenticated && state.Session == nil && !state.IsLoading
	})
}

func TestRefreshSessionSingleFlight(t *testing.T) {
	release := make(chan struct{})
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		<-release
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})

	first := make(chan bool, 1)
	go func() {
		first <- m.RefreshSession(context.Background())
	}()

	waitFor(t, "first refresh in flight", func() bool {
		return store.callCount("current") == 1
	})

	// Second caller must bail out immediately without a network call.
	if m.RefreshSession(context.Background()) {
		t.Fatalf("concurrent refresh must return false")
	}
	if got := store.callCount("current"); got != 1 {
		t.Fatalf("concurrent refresh issued a network call, count = %d", got)
	}

	close(release)
	if !<-first {
		t.Fatalf("first refresh should succeed")
	}
	if state := m.State(); !state.IsAuthenticated {
		t.Fatalf("expected authenticated state after refresh")
	}
}

func TestRefreshSessionFallsBackToRotation(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return nil, ErrSessionExpired
	}
	store.refreshFn = func(context.Context) (*Session, error) {
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})

	if !m.RefreshSession(context.Background()) {
		t.Fatalf("refresh should succeed via rotation")
	}
	if got := store.callCount("refresh"); got != 1 {
		t.Fatalf("rotation called %d times, want 1", got)
	}
}

func TestRefreshSessionFailureSignsOut(t *testing.T) {
	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return nil, ErrSessionExpired
	}
	store.refreshFn = func(context.Context) (*Session, error) {
		return nil, ErrSessionExpired
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})

	if m.RefreshSession(context.Background()) {
		t.Fatalf("refresh should fail")
	}
	if state := m.State(); state.IsAuthenticated || state.IsLoading {
		t.Fatalf("failed refresh must end signed-out, got %+v", state)
	}
}

func TestSignedInEventDedupedByUser(t *testing.T) {
	store := newFakeStore()
	store.signInFn = func(context.Context, string, string) (*Session, error) {
		return sessionFor("u1"), nil
	}
	dir := newFakeDirectory()
	dir.profiles["u1"] = Profile{UserID: "u1"}
	m := NewManager(store, dir, nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	if err := m.SignIn(context.Background(), "u1@nstu.edu.bd", "s3cret-pass"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// Echo of the sign-in we already applied: must be a no-op.
	store.events <- Event{Kind: EventSignedIn, Session: sessionFor("u1")}
	// Marker event so we know the echo was processed.
	marker := sessionFor("u1")
	marker.AccessToken = "rotated"
	store.events <- Event{Kind: EventTokenRefreshed, Session: marker}

	waitFor(t, "marker token", func() bool {
		return m.State().Session != nil && m.State().Session.AccessToken == "rotated"
	})

	if gets, _ := dir.counts(); gets != 0 {
		t.Fatalf("deduped event must not touch the profile directory, gets = %d", gets)
	}
}

func TestSignedInEventForNewUserCreatesProfile(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	m := NewManager(store, dir, nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	store.events <- Event{Kind: EventSignedIn, Session: sessionFor("u2")}

	waitFor(t, "authenticated u2 with profile", func() bool {
		state := m.State()
		_, creates := dir.counts()
		return state.IsAuthenticated && state.User.ID == "u2" && creates == 1
	})
}

func TestSignedOutEventWhenAlreadySignedOut(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	store.events <- Event{Kind: EventSignedOut}
	marker := sessionFor("u9")
	store.events <- Event{Kind: EventTokenRefreshed, Session: marker}

	waitFor(t, "marker session", func() bool {
		state := m.State()
		return state.Session != nil && state.User.ID == "u9"
	})
}

func TestResumeRefreshesExpiredSession(t *testing.T) {
	expired := sessionFor("u1")
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	store := newFakeStore()
	store.currentFn = func(context.Context) (*Session, error) {
		return expired, nil
	}
	store.refreshFn = func(context.Context) (*Session, error) {
		return sessionFor("u1"), nil
	}
	m := NewManager(store, newFakeDirectory(), nil, Config{})
	defer m.Close()
	m.Initialize(context.Background())

	if state := m.State(); state.Session == nil {
		t.Fatalf("expired session should still be cached until checked")
	}

	m.Resume(context.Background())

	state := m.State()
	if !state.IsAuthenticated || state.Session.Expired(time.Now()) {
		t.Fatalf("resume must silently refresh the expired session, got %+v", state)
	}
	if got := store.callCount("refresh"); got != 1 {
		t.Fatalf("rotation called %d times, want 1", got)
	}
}

func TestRunKeepAliveStopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, newFakeDirectory(), nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunKeepAlive(ctx, 10*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("keepalive loop did not stop on cancel")
	}
}
