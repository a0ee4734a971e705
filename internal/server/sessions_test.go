package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/tour"
)

func openDemo(t *testing.T) *tour.Session {
	t.Helper()
	demo, err := tour.Parse(demoSlug, []byte("title: Demo\n"))
	require.NoError(t, err)
	return demo.Open(context.Background(), nil, tour.DefaultOptions())
}

func closed(session *tour.Session) bool {
	select {
	case <-session.Done():
		return true
	default:
		return false
	}
}

func TestSessionTableExpiresIdleSessions(t *testing.T) {
	table := newSessionTable(10, 50*time.Millisecond, logging.Nop())
	session := openDemo(t)
	table.add(session)

	got, ok := table.get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)

	require.Eventually(t, func() bool { return closed(session) }, 2*time.Second, 10*time.Millisecond)
	_, ok = table.get(session.ID)
	assert.False(t, ok)
}

func TestSessionTableTouchExtendsLifetime(t *testing.T) {
	table := newSessionTable(10, 300*time.Millisecond, logging.Nop())
	session := openDemo(t)
	table.add(session)

	for i := 0; i < 5; i++ {
		time.Sleep(100 * time.Millisecond)
		table.touch(session)
	}
	assert.False(t, closed(session))

	table.purge()
	assert.True(t, closed(session))
}

func TestSessionTableEvictsLeastRecentlyUsed(t *testing.T) {
	table := newSessionTable(1, time.Minute, logging.Nop())
	first := openDemo(t)
	second := openDemo(t)

	table.add(first)
	table.add(second)

	assert.True(t, closed(first))
	assert.False(t, closed(second))
	assert.Equal(t, 1, table.len())

	_, ok := table.get("")
	assert.False(t, ok)
}
