package session

import (
	"sync"
	"time"
)

type User struct {
	ID        string
	Email     string
	Username  string
	Bio       string
	AvatarURL string
	CampusID  string
}

// Session is one authenticated login. The remote store owns it; the client
// only holds a mirrored copy.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// State is what the application currently believes about the login.
// IsAuthenticated always equals Session != nil.
type State struct {
	User            *User
	Session         *Session
	IsAuthenticated bool
	IsLoading       bool
}

// Cache is the single source of truth for State. All mutations go through
// write or setLoading so the IsAuthenticated invariant cannot be broken by
// partial updates.
type Cache struct {
	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

func NewCache() *Cache {
	return &Cache{
		state: State{IsLoading: true},
		subs:  make(map[int]chan State),
	}
}

func (c *Cache) Read() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// write replaces the whole state from the given session and clears the
// loading flag. It is the only way authenticated-ness changes.
func (c *Cache) write(session *Session) {
	c.mu.Lock()
	if session == nil {
		c.state = State{}
	} else {
		s := *session
		user := s.User
		c.state = State{
			User:            &user,
			Session:         &s,
			IsAuthenticated: true,
		}
	}
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Cache) setLoading(loading bool) {
	c.mu.Lock()
	c.state.IsLoading = loading
	c.notifyLocked()
	c.mu.Unlock()
}

// Subscribe returns a channel carrying state snapshots and a cancel
// function. Delivery is latest-wins: a slow reader only ever misses
// intermediate states, never the final one.
func (c *Cache) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	ch := make(chan State, 1)
	c.subs[id] = ch
	ch <- c.state
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Cache) notifyLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- c.state:
		default:
			// Drop the stale snapshot and replace it with the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c.state:
			default:
			}
		}
	}
}
