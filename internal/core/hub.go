package core

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ghostcord/internal/service/friends"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store"
)

// HistoryLimit caps every history reply.
const HistoryLimit = 100

// Hub routes commands from connected clients to the store and fans out the
// resulting events. Each client's commands are handled in order on their own
// goroutine; different clients run concurrently.
type Hub struct {
	store    store.Store
	friends  *friends.Service
	servers  *servers.Service
	registry *Registry
	log      *zerolog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}

	// ctx outlives any single connection so a disconnect never cancels
	// a write that is already in flight.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub backed by st. A nil logger disables logging.
func NewHub(st store.Store, friendSvc *friends.Service, serverSvc *servers.Service, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		store:    st,
		friends:  friendSvc,
		servers:  serverSvc,
		registry: NewRegistry(),
		log:      logger,
		clients:  make(map[*Client]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Registry exposes the session registry for presence queries.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run blocks until ctx is done, then stops every client loop and waits for
// in-flight commands to finish.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.cancel()
	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.mu.Unlock()

	h.wg.Wait()
	h.log.Info().Msg("hub stopped")
}

// RegisterClient adds a connection and starts processing its commands.
func (h *Hub) RegisterClient(c *Client) {
	h.mu.Lock()
	if h.ctx.Err() != nil {
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	h.log.Debug().Str("client_id", c.ID).Msg("client registered")

	go func() {
		defer h.wg.Done()
		h.serve(c)
	}()
}

// UnregisterClient removes a connection. If it still owned an identity the
// identity goes offline.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	identity, bound := h.registry.Unbind(c)
	h.mu.Unlock()

	c.close()
	h.log.Debug().Str("client_id", c.ID).Str("user", identity).Msg("client unregistered")

	if bound {
		h.publishOffline(identity)
	}
}

func (h *Hub) serve(c *Client) {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-c.done:
			return
		case cmd := <-c.Commands:
			if cmd != nil {
				h.dispatch(c, cmd)
			}
		}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().
				Str("client_id", c.ID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("command handler panicked")
			h.fail(c, coreError(ErrCodeInternal, "internal error"))
		}
	}()

	if cmd.Kind == CommandJoin {
		h.join(c, cmd)
		return
	}

	identity, ok := h.registry.IdentityOf(c)
	if !ok {
		h.fail(c, coreError(ErrCodeNotJoined, "join first"))
		return
	}

	switch cmd.Kind {
	case CommandChannelMessage:
		h.channelMessage(c, identity, cmd)
	case CommandGlobalMessage:
		h.globalMessage(c, identity, cmd)
	case CommandDirectMessage:
		h.directMessage(c, identity, cmd)
	case CommandGetMessages:
		h.channelHistory(c, cmd)
	case CommandGetDirectMessages:
		h.directHistory(c, identity, cmd)
	case CommandGetGlobalMessages:
		h.globalHistory(c)
	case CommandGetServers:
		h.listServers(c)
	case CommandCreateServer:
		h.createServer(c, identity, cmd)
	case CommandJoinServer:
		h.joinServer(c, identity, cmd)
	case CommandCreateChannel:
		h.createChannel(c, identity, cmd)
	case CommandFriendRequest:
		h.friendRequest(c, identity, cmd)
	case CommandAcceptFriend:
		h.acceptFriend(c, identity, cmd)
	case CommandRemoveFriend:
		h.removeFriend(c, identity, cmd)
	case CommandGetFriends:
		h.listFriends(c, identity)
	case CommandCallUser, CommandAnswerCall, CommandIceCandidate, CommandEndCall:
		h.relaySignal(c, identity, cmd)
	default:
		h.fail(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) join(c *Client, cmd *Command) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		h.fail(c, coreError(ErrCodeBadRequest, "name is required"))
		return
	}

	// Holding h.mu keeps a concurrent unregister from slipping between the
	// membership check and the bind.
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	prev, superseded := h.registry.Bind(name, c)
	h.mu.Unlock()

	if superseded != nil {
		h.log.Info().Str("user", name).Str("client_id", superseded.ID).Msg("session superseded")
	}
	if prev != "" {
		h.publishOffline(prev)
	}
	h.publishOnline(name)

	ev := &Event{Kind: EventInit, User: name, Online: h.registry.Online()}
	infos, err := h.servers.ListServersForUser(h.ctx, name)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}
	ev.Servers = serverViews(infos)

	views, err := h.friends.List(h.ctx, name)
	if err != nil {
		h.fail(c, h.classify(err))
		return
	}
	ev.Friends = friendViews(views)

	h.send(c, ev)
}

func (h *Hub) publishOnline(identity string) {
	h.broadcast(&Event{Kind: EventOnlineUsers, Online: h.registry.Online()})
	h.broadcast(&Event{Kind: EventUserOnline, User: identity})
}

func (h *Hub) publishOffline(identity string) {
	h.broadcast(&Event{Kind: EventUserOffline, User: identity})
	h.broadcast(&Event{Kind: EventOnlineUsers, Online: h.registry.Online()})
}

// broadcast delivers ev to every registered connection, joined or not.
func (h *Hub) broadcast(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.deliver(ev) {
			h.log.Warn().Str("client_id", c.ID).Msg("dropping event for slow client")
		}
	}
}

// sendTo delivers ev to whoever is bound to identity and reports whether it
// was queued.
func (h *Hub) sendTo(identity string, ev *Event) bool {
	c, ok := h.registry.Lookup(identity)
	if !ok {
		return false
	}
	return c.deliver(ev)
}

func (h *Hub) send(c *Client, ev *Event) {
	if !c.deliver(ev) {
		h.log.Warn().Str("client_id", c.ID).Msg("dropping reply for slow client")
	}
}

func (h *Hub) fail(c *Client, err *CoreError) {
	h.send(c, &Event{Kind: EventError, Error: err})
}

var knownErrors = []struct {
	err  error
	code string
}{
	{friends.ErrCannotFriendSelf, ErrCodeBadRequest},
	{friends.ErrUserNotFound, ErrCodeNotFound},
	{friends.ErrAlreadyFriends, ErrCodeConflict},
	{friends.ErrRequestAlreadyExists, ErrCodeConflict},
	{friends.ErrRequestNotFound, ErrCodeNotFound},
	{servers.ErrInvalidName, ErrCodeBadRequest},
	{servers.ErrServerExists, ErrCodeConflict},
	{servers.ErrServerNotFound, ErrCodeNotFound},
	{servers.ErrChannelExists, ErrCodeConflict},
	{servers.ErrNotServerMember, ErrCodeNotMember},
}

// classify maps a service or store error to the notification the requester
// sees. Anything unknown is a persistence failure and gets logged.
func (h *Hub) classify(err error) *CoreError {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return coreError(known.code, known.err.Error())
		}
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return coreError(ErrCodeNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		return coreError(ErrCodeConflict, "already exists")
	}

	h.log.Error().Err(err).Msg("store operation failed")
	return coreError(ErrCodePersistenceFailure, "could not save, try again")
}
