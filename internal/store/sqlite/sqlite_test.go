package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ghostcord/internal/store"
)

func newTestStore(t *testing.T, setup func(*sql.DB) error) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", setup)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRows(t *testing.T, s *SQLiteStore, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestFriendRowIsKeyedByUnorderedPair(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	f, err := s.CreateFriendRequest(ctx, "zed", "amy")
	require.NoError(t, err)
	assert.Equal(t, "amy", f.UserA)
	assert.Equal(t, "zed", f.UserB)
	assert.Equal(t, "zed", f.Requester)

	_, err = s.CreateFriendRequest(ctx, "amy", "zed")
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := s.GetFriendship(ctx, "amy", "zed")
	require.NoError(t, err)
	assert.Equal(t, store.FriendStatusPending, got.Status)
	assert.Equal(t, "zed", got.Requester)

	require.NoError(t, s.UpdateFriendStatus(ctx, "zed", "amy", store.FriendStatusAccepted))
	got, err = s.GetFriendship(ctx, "zed", "amy")
	require.NoError(t, err)
	assert.Equal(t, store.FriendStatusAccepted, got.Status)

	require.NoError(t, s.DeleteFriendship(ctx, "amy", "zed"))
	_, err = s.GetFriendship(ctx, "zed", "amy")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.DeleteFriendship(ctx, "amy", "zed"), store.ErrNotFound)

	// Nothing lingers after removal.
	_, err = s.CreateFriendRequest(ctx, "amy", "zed")
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM friends`))
}

func TestCreateServerGrantsOwnerAndDefaultChannel(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	info, err := s.CreateServer(ctx, &store.Server{ID: "s1", Name: "Test", Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, info.Channels)
	assert.Equal(t, []string{"alice"}, info.Members)

	got, err := s.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Test", got.Name)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, []string{"general"}, got.Channels)
	assert.Equal(t, []string{"alice"}, got.Members)

	_, err = s.CreateServer(ctx, &store.Server{ID: "s1", Name: "Again", Owner: "bob"})
	require.ErrorIs(t, err, store.ErrConflict)

	got, err = s.GetServer(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Test", got.Name)
}

func TestCreateServerRollsBackOnPartialFailure(t *testing.T) {
	s := newTestStore(t, func(db *sql.DB) error {
		_, err := db.Exec(`
			CREATE TRIGGER fail_default_channel BEFORE INSERT ON channels
			WHEN NEW.server_id = 'broken'
			BEGIN
				SELECT RAISE(ABORT, 'channel insert refused');
			END;
		`)
		return err
	})
	ctx := context.Background()

	_, err := s.CreateServer(ctx, &store.Server{ID: "broken", Name: "Broken", Owner: "alice"})
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM servers WHERE id = 'broken'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM server_members WHERE server_id = 'broken'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM channels WHERE server_id = 'broken'`))

	_, err = s.GetServer(ctx, "broken")
	require.ErrorIs(t, err, store.ErrNotFound)

	servers, err := s.ListServers(ctx)
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.CreateServer(ctx, &store.Server{ID: "s1", Name: "Test", Owner: "alice"})
	require.NoError(t, err)

	added, err := s.AddMember(ctx, "s1", "bob")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddMember(ctx, "s1", "bob")
	require.NoError(t, err)
	assert.False(t, added)

	members, err := s.ListMembers(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, members)

	_, err = s.AddMember(ctx, "ghost", "bob")
	require.ErrorIs(t, err, store.ErrNotFound)

	mine, err := s.ListServersForUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "s1", mine[0].ID)
}

func TestChannelMessagesHistory(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.CreateServer(ctx, &store.Server{ID: "s1", Name: "Test", Owner: "alice"})
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := range 105 {
		require.NoError(t, s.SaveChannelMessage(ctx, &store.Message{
			ServerID:  "s1",
			Channel:   "general",
			Username:  "alice",
			Text:      fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	first, err := s.ListChannelMessages(ctx, "s1", "general", 100)
	require.NoError(t, err)
	require.Len(t, first, 100)
	assert.Equal(t, "msg 5", first[0].Text)
	assert.Equal(t, "msg 104", first[99].Text)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].CreatedAt.Before(first[i-1].CreatedAt), "history must be ascending")
	}

	second, err := s.ListChannelMessages(ctx, "s1", "general", 100)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	err = s.SaveChannelMessage(ctx, &store.Message{ServerID: "s1", Channel: "missing", Username: "alice", Text: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDirectMessagesBothDirections(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.SaveDirectMessage(ctx, &store.DirectMessage{From: "alice", To: "bob", Text: "hi"}))
	require.NoError(t, s.SaveDirectMessage(ctx, &store.DirectMessage{From: "bob", To: "alice", Text: "hey"}))
	require.NoError(t, s.SaveDirectMessage(ctx, &store.DirectMessage{From: "alice", To: "carol", Text: "other"}))

	msgs, err := s.ListDirectMessages(ctx, "bob", "alice", 100)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "hey", msgs[1].Text)
}

func TestDeleteAllUserData(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	_, err = s.CreateServer(ctx, &store.Server{ID: "owned", Name: "Owned", Owner: "alice"})
	require.NoError(t, err)
	_, err = s.CreateServer(ctx, &store.Server{ID: "other", Name: "Other", Owner: "bob"})
	require.NoError(t, err)
	_, err = s.AddMember(ctx, "other", "alice")
	require.NoError(t, err)
	require.NoError(t, s.SaveChannelMessage(ctx, &store.Message{ServerID: "other", Channel: "general", Username: "alice", Text: "x"}))
	require.NoError(t, s.SaveDirectMessage(ctx, &store.DirectMessage{From: "bob", To: "alice", Text: "x"}))
	require.NoError(t, s.SaveGlobalMessage(ctx, &store.GlobalMessage{Username: "alice", Text: "x"}))
	_, err = s.CreateFriendRequest(ctx, "bob", "alice")
	require.NoError(t, err)

	require.NoError(t, s.DeleteAllUserData(ctx, "alice"))

	_, err = s.GetUser(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM servers WHERE id = 'owned'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM channels WHERE server_id = 'owned'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM server_members WHERE username = 'alice'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM messages WHERE username = 'alice'`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM direct_messages`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM global_messages`))
	assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM friends`))

	members, err := s.ListMembers(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, members)

	require.ErrorIs(t, s.DeleteAllUserData(ctx, "alice"), store.ErrNotFound)
}
