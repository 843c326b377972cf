package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ghostcord/internal/service/friends"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store"
	"github.com/vovakirdan/ghostcord/internal/store/sqlite"
)

// newTestHub runs a hub over an in-memory store. wrap, when set, decorates
// the store the hub writes messages through.
func newTestHub(t *testing.T, wrap func(store.Store) store.Store) (*Hub, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var hubStore store.Store = st
	if wrap != nil {
		hubStore = wrap(st)
	}

	hub := NewHub(hubStore, friends.New(st), servers.New(st), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return hub, st
}

func createUsers(t *testing.T, st store.Store, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := st.CreateUser(context.Background(), name, "hash")
		require.NoError(t, err)
	}
}

// connect registers a client and joins it as name.
func connect(t *testing.T, hub *Hub, id, name string) *Client {
	t.Helper()

	c := NewClient(id)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoin, Name: name}
	mustEvent(t, c.Events, EventInit)
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()
	return mustEventWhere(t, ch, kind, func(*Event) bool { return true })
}

// mustEventWhere skips events until one of kind satisfies match.
func mustEventWhere(t *testing.T, ch <-chan *Event, kind EventKind, match func(*Event) bool) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind && match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

// mustError waits for an error event and checks its code.
func mustError(t *testing.T, ch <-chan *Event, code string) *Event {
	t.Helper()

	ev := mustEvent(t, ch, EventError)
	require.NotNil(t, ev.Error)
	require.Equal(t, code, ev.Error.Code, ev.Error.Message)
	return ev
}

// noEvent fails if an event of kind arrives within wait.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}
