package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	llm := &fakeLLM{}
	factory := &staticFactory{client: llm}
	manager := NewManager(&toggleCredentials{key: "k"}, factory.build, nil, testLogger())
	ctx := context.Background()

	a, err := manager.Create(ctx)
	require.NoError(t, err)
	b, err := manager.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, manager.Len())

	got, err := manager.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, manager.Remove(a.ID()))
	_, err = manager.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Remove(a.ID()), ErrSessionNotFound)

	manager.Close()
	assert.Equal(t, 0, manager.Len())
	assert.True(t, llm.closed)
}

func TestManagerCreateWithoutCredentialRegistersNothing(t *testing.T) {
	factory := &staticFactory{client: &fakeLLM{}}
	manager := NewManager(&toggleCredentials{}, factory.build, nil, testLogger())

	_, err := manager.Create(context.Background())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 0, manager.Len())
}

// stepClock is a settable time source shared by sessions under test.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestManagerEvictIdle(t *testing.T) {
	clock := &stepClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	llm := &fakeLLM{}
	factory := &staticFactory{client: llm}
	manager := NewManager(&toggleCredentials{key: "k"}, factory.build, nil, testLogger(), WithSessionClock(clock.Now))
	ctx := context.Background()

	stale, err := manager.Create(ctx)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	fresh, err := manager.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), fresh.LastActive())

	clock.Advance(15 * time.Minute)
	// A turn refreshes activity.
	_, err = fresh.Send(ctx, "still here")
	require.NoError(t, err)

	evicted := manager.EvictIdle(clock.Now().Add(-30 * time.Minute))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, manager.Len())
	_, err = manager.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get(fresh.ID())
	assert.NoError(t, err)
	assert.True(t, llm.closed)

	assert.Equal(t, 0, manager.EvictIdle(clock.Now().Add(-30*time.Minute)))
}

func TestManagerRunStopsWithContext(t *testing.T) {
	manager := NewManager(&toggleCredentials{key: "k"}, (&staticFactory{client: &fakeLLM{}}).build, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Run(ctx, time.Minute)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Disabled eviction returns immediately.
	manager.Run(context.Background(), 0)
}
