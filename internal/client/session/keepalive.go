package session

import (
	"context"
	"time"
)

const (
	DefaultKeepAliveInterval = time.Minute
	DefaultIdleThreshold     = 10 * time.Minute
)

// MarkActivity records user interaction. The keepalive loop only probes the
// session once the user has been idle past the threshold, so an active tab
// never burns requests on a session it is about to use anyway.
func (m *Manager) MarkActivity() {
	m.lastActivity.Store(m.now().UnixNano())
}

// Resume is the hook for the app regaining focus after being backgrounded:
// the cached session may have silently expired in the meantime, so check it
// right away instead of waiting for the next tick.
func (m *Manager) Resume(ctx context.Context) {
	m.checkSession(ctx)
	m.MarkActivity()
}

// RunKeepAlive periodically verifies the cached session while the user is
// idle. It blocks until ctx is cancelled.
func (m *Manager) RunKeepAlive(ctx context.Context, interval, idleThreshold time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idle := m.now().Sub(time.Unix(0, m.lastActivity.Load()))
			if idle < idleThreshold {
				continue
			}
			m.checkSession(ctx)
		}
	}
}

// checkSession silently refreshes an expired cached session. On refresh
// failure RefreshSession already cleared the cache, which is the desired
// terminal state.
func (m *Manager) checkSession(ctx context.Context) {
	state := m.cache.Read()
	if state.Session == nil {
		return
	}
	if !state.Session.Expired(m.now()) {
		return
	}
	if !m.RefreshSession(ctx) {
		m.logger.Info("expired session could not be refreshed, signed out locally")
	}
}
