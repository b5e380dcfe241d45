package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/mailbox"
	"github.com/raoulx24/dirsync/internal/replicator"
)

func TestFirePutsRequest(t *testing.T) {
	mb := mailbox.New[replicator.Request]()
	s, err := New("@every 1h", mb, logging.Discard())
	require.NoError(t, err)

	s.fire()
	req := mb.TryTake()
	require.NotNil(t, req)
	assert.Equal(t, "schedule", req.Reason)
}

func TestEverySecond(t *testing.T) {
	mb := mailbox.New[replicator.Request]()
	s, err := New("@every 1s", mb, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	takeCtx, takeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer takeCancel()
	req, ok := mb.Take(takeCtx)
	require.True(t, ok)
	assert.Equal(t, "schedule", req.Reason)

	cancel()
	<-done
}

func TestUpdateConfig(t *testing.T) {
	mb := mailbox.New[replicator.Request]()
	s, err := New("", mb, logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, s.c.Entries())

	require.NoError(t, s.UpdateConfig("*/5 * * * *"))
	require.Len(t, s.c.Entries(), 1)
	first := s.id

	require.NoError(t, s.UpdateConfig("*/5 * * * *"))
	assert.Equal(t, first, s.id)

	require.Error(t, s.UpdateConfig("every tuesday"))
	require.Len(t, s.c.Entries(), 1)
	assert.Equal(t, "*/5 * * * *", s.spec)

	require.NoError(t, s.UpdateConfig(""))
	assert.Empty(t, s.c.Entries())
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("61 * * * *", mailbox.New[replicator.Request](), logging.Discard())
	require.Error(t, err)
}
