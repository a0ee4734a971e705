package server

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/metrics"
	"github.com/conneroisu/codetour/internal/tour"
)

// sessionTable holds the open sessions. Entries expire after ttl without
// activity; the least recently used session is dropped when the table is
// full. Either way the session is closed.
type sessionTable struct {
	sessions *expirable.LRU[string, *tour.Session]
}

func newSessionTable(size int, ttl time.Duration, logger logging.Logger) *sessionTable {
	onEvict := func(id string, session *tour.Session) {
		session.Close()
		metrics.ActiveSessions.Dec()
		logger.Debug(context.Background(), "Session ended", "session", id)
	}
	return &sessionTable{
		sessions: expirable.NewLRU[string, *tour.Session](size, onEvict, ttl),
	}
}

func (t *sessionTable) add(session *tour.Session) {
	t.sessions.Add(session.ID, session)
	metrics.ActiveSessions.Inc()
}

func (t *sessionTable) get(id string) (*tour.Session, bool) {
	if id == "" {
		return nil, false
	}
	return t.sessions.Get(id)
}

// touch restarts the idle timer of a session.
func (t *sessionTable) touch(session *tour.Session) {
	select {
	case <-session.Done():
		return
	default:
	}
	if t.sessions.Contains(session.ID) {
		t.sessions.Add(session.ID, session)
	}
}

func (t *sessionTable) remove(id string) {
	t.sessions.Remove(id)
}

func (t *sessionTable) len() int {
	return t.sessions.Len()
}

func (t *sessionTable) purge() {
	t.sessions.Purge()
}
