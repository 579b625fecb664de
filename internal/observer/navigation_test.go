package observer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	location string
	ticks    chan struct{}
}

func (s *fakeSource) Mutations() <-chan struct{} { return s.ticks }

func (s *fakeSource) Location(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

func (s *fakeSource) navigate(loc string) {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()
	s.ticks <- struct{}{}
}

func next(t *testing.T, events <-chan NavigationEvent) NavigationEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no navigation event")
		return NavigationEvent{}
	}
}

func TestMutationWatcher_EmitsOnlyLocationChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{location: "https://site/a", ticks: make(chan struct{})}
	events, err := NewMutationWatcher(src, src, nil).Watch(ctx)
	require.NoError(t, err)

	assert.Equal(t, NavigationEvent{URL: "https://site/a", Initial: true}, next(t, events))

	src.navigate("https://site/a")
	src.navigate("https://site/a")
	src.navigate("https://site/b")
	assert.Equal(t, NavigationEvent{URL: "https://site/b"}, next(t, events))

	src.navigate("https://site/a")
	assert.Equal(t, NavigationEvent{URL: "https://site/a"}, next(t, events))
}

func TestMutationWatcher_ClosesWithSource(t *testing.T) {
	src := &fakeSource{location: "https://site/a", ticks: make(chan struct{})}
	events, err := NewMutationWatcher(src, src, nil).Watch(context.Background())
	require.NoError(t, err)

	next(t, events)
	close(src.ticks)

	_, ok := <-events
	assert.False(t, ok)
}

func TestMutationWatcher_ClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{location: "https://site/a", ticks: make(chan struct{})}
	events, err := NewMutationWatcher(src, src, nil).Watch(ctx)
	require.NoError(t, err)

	cancel()
	for range events {
	}
}

type loadingSource struct {
	fakeSource
	loads chan struct{}
}

func (s *loadingSource) Loads() <-chan struct{} { return s.loads }

func TestMutationWatcher_ReportsReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &loadingSource{
		fakeSource: fakeSource{location: "https://site/a", ticks: make(chan struct{})},
		loads:      make(chan struct{}, 1),
	}
	// a load that happened before watching is covered by the initial event
	src.loads <- struct{}{}

	events, err := NewMutationWatcher(src, src, nil).Watch(ctx)
	require.NoError(t, err)
	assert.Equal(t, NavigationEvent{URL: "https://site/a", Initial: true}, next(t, events))

	src.navigate("https://site/a")
	src.loads <- struct{}{}
	assert.Equal(t, NavigationEvent{URL: "https://site/a", Reload: true}, next(t, events))

	src.mu.Lock()
	src.location = "https://site/b"
	src.mu.Unlock()
	src.loads <- struct{}{}
	assert.Equal(t, NavigationEvent{URL: "https://site/b"}, next(t, events))

	// the mutation after a load does not repeat the event
	src.navigate("https://site/b")
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
