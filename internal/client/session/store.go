package session

import "context"

type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is an asynchronous session-change notification pushed by the
// remote store.
type Event struct {
	Kind    EventKind
	Session *Session
}

type SignUpData struct {
	Email    string
	Password string
	Username string
	Bio      string
	CampusID string
}

// Store is the remote session service: issue, validate, refresh, revoke.
// Implementations map their transport failures onto the package's sentinel
// errors.
type Store interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, data SignUpData) (*Session, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (*Session, error)

	// SessionChanges subscribes to session lifecycle events. The returned
	// cancel function releases the subscription and closes the channel.
	SessionChanges() (<-chan Event, func())
}

type Profile struct {
	UserID    string
	Username  string
	Email     string
	Bio       string
	AvatarURL string
	CampusID  string
}

// ProfileDirectory is the application-level profile storage, distinct from
// the authentication account.
type ProfileDirectory interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	CreateProfile(ctx context.Context, profile Profile) error
}
