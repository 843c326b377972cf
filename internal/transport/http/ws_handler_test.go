package http

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ghostcord/internal/auth"
	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/proto"
)

func TestWebSocketJoinAndPresence(t *testing.T) {
	env := startTestServer(t, testConfig())

	alice := env.dial(t)
	join(t, alice, "alice")

	bob := env.dial(t)
	init := join(t, bob, "bob")
	assert.Equal(t, "bob", init.Username)
	assert.Equal(t, []string{"alice", "bob"}, init.Online)
	assert.Empty(t, init.Servers)

	var online proto.EventUser
	readEvent(t, alice, proto.EventUserOnline, &online)
	assert.Equal(t, "bob", online.Username)

	// Closing the socket without any goodbye takes bob offline.
	require.NoError(t, bob.Close(websocket.StatusNormalClosure, "bye"))

	var offline proto.EventUser
	readEvent(t, alice, proto.EventUserOffline, &offline)
	assert.Equal(t, "bob", offline.Username)

	var set proto.EventOnlineUsers
	readEvent(t, alice, proto.EventOnlineUsers, &set)
	assert.Equal(t, map[string]string{"alice": "online"}, set.Users)
}

func TestWebSocketRequiresJoin(t *testing.T) {
	env := startTestServer(t, testConfig())

	conn := env.dial(t)
	send(t, conn, proto.InboundTypeGlobalMessage, proto.GlobalMessageData{Text: "hi"})
	assert.Equal(t, core.ErrCodeNotJoined, readError(t, conn).Code)

	send(t, conn, "bogus", map[string]string{})
	assert.Equal(t, "invalid_message", readError(t, conn).Code)
}

func TestWebSocketDirectMessage(t *testing.T) {
	env := startTestServer(t, testConfig())

	alice := env.dial(t)
	join(t, alice, "alice")
	bob := env.dial(t)
	join(t, bob, "bob")

	send(t, alice, proto.InboundTypeDirectMessage, proto.DirectMessageData{To: "bob", Msg: proto.MsgBody{Text: "psst"}})

	var dm proto.EventMessage
	readEvent(t, bob, proto.EventDirectMessage, &dm)
	assert.Equal(t, "alice", dm.From)
	assert.Equal(t, "psst", dm.Text)

	var sent proto.EventDirectMessageSent
	readEvent(t, alice, proto.EventDirectMessageSent, &sent)
	assert.True(t, sent.Delivered)
	assert.Equal(t, "bob", sent.To)
}

func TestWebSocketFriendFlow(t *testing.T) {
	env := startTestServer(t, testConfig())
	ctx := t.Context()
	_, err := env.auth.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	_, err = env.auth.Register(ctx, "bob", "password123")
	require.NoError(t, err)

	alice := env.dial(t)
	join(t, alice, "alice")
	bob := env.dial(t)
	join(t, bob, "bob")

	send(t, alice, proto.InboundTypeFriendRequest, proto.FriendData{To: "bob"})
	var from proto.EventFrom
	readEvent(t, bob, proto.EventFriendRequest, &from)
	assert.Equal(t, "alice", from.From)
	var to proto.EventTo
	readEvent(t, alice, proto.EventFriendRequestSent, &to)
	assert.Equal(t, "bob", to.To)

	send(t, bob, proto.InboundTypeAcceptFriend, proto.FriendData{To: "alice"})
	readEvent(t, alice, proto.EventAcceptFriend, &from)
	assert.Equal(t, "bob", from.From)
	var friend proto.EventFriend
	readEvent(t, bob, proto.EventFriendAccepted, &friend)
	assert.Equal(t, "alice", friend.Friend)

	send(t, alice, proto.InboundTypeGetFriends, nil)
	var list proto.EventFriends
	readEvent(t, alice, proto.EventFriends, &list)
	assert.Equal(t, []proto.Friend{{Username: "bob", Status: "accepted"}}, list.Friends)

	send(t, bob, proto.InboundTypeRemoveFriend, proto.RemoveFriendData{Username: "alice"})
	var removed proto.EventUser
	readEvent(t, alice, proto.EventFriendRemoved, &removed)
	assert.Equal(t, "bob", removed.Username)
}

func TestWebSocketSignalRelay(t *testing.T) {
	env := startTestServer(t, testConfig())

	alice := env.dial(t)
	join(t, alice, "alice")
	bob := env.dial(t)
	join(t, bob, "bob")

	send(t, alice, proto.InboundTypeCallUser, map[string]any{"to": "bob", "offer": map[string]string{"sdp": "v=0"}})

	var call map[string]any
	readEvent(t, bob, proto.EventIncomingCall, &call)
	assert.Equal(t, "alice", call["from"])
	assert.Equal(t, map[string]any{"sdp": "v=0"}, call["offer"])
	assert.NotContains(t, call, "to")

	send(t, alice, proto.InboundTypeEndCall, map[string]string{"to": "carol"})
	assert.Equal(t, core.ErrCodeUnreachable, readError(t, alice).Code)
}

func TestWebSocketJoinToken(t *testing.T) {
	cfg := testConfig()
	cfg.RequireToken = true
	env := startTestServer(t, cfg)

	conn := env.dial(t)
	send(t, conn, proto.InboundTypeJoin, proto.JoinData{Name: "alice"})
	assert.Equal(t, core.ErrCodeUnauthorized, readError(t, conn).Code)

	send(t, conn, proto.InboundTypeJoin, proto.JoinData{Name: "alice", Token: "garbage"})
	assert.Equal(t, core.ErrCodeUnauthorized, readError(t, conn).Code)

	token, err := auth.GenerateToken(&auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}, "bob")
	require.NoError(t, err)

	send(t, conn, proto.InboundTypeJoin, proto.JoinData{Name: "alice", Token: token})
	assert.Equal(t, core.ErrCodeUnauthorized, readError(t, conn).Code)

	send(t, conn, proto.InboundTypeJoin, proto.JoinData{Name: "bob", Token: token})
	var init proto.EventInit
	readEvent(t, conn, proto.EventInit, &init)
	assert.Equal(t, "bob", init.Username)
}

func TestWebSocketRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MessagesPerMinute = 2
	env := startTestServer(t, cfg)

	conn := env.dial(t)
	join(t, conn, "alice")

	for range 2 {
		send(t, conn, proto.InboundTypeGlobalMessage, proto.GlobalMessageData{Text: "hi"})
		readEvent(t, conn, proto.EventGlobalMessage, nil)
	}
	send(t, conn, proto.InboundTypeGlobalMessage, proto.GlobalMessageData{Text: "one too many"})
	assert.Equal(t, core.ErrCodeRateLimited, readError(t, conn).Code)
}

func TestCloseStatus(t *testing.T) {
	status, _ := closeStatus(io.EOF)
	assert.Equal(t, websocket.StatusNormalClosure, status)

	status, _ = closeStatus(websocket.CloseError{Code: websocket.StatusGoingAway})
	assert.Equal(t, websocket.StatusNormalClosure, status)

	status, _ = closeStatus(websocket.CloseError{Code: websocket.StatusMessageTooBig, Reason: "too big"})
	assert.Equal(t, websocket.StatusMessageTooBig, status)

	status, reason := closeStatus(errors.New(strings.Repeat("x", 200)))
	assert.Equal(t, websocket.StatusInternalError, status)
	assert.Len(t, reason, 123)
}
