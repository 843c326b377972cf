package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ghostcord/internal/auth"
	"github.com/vovakirdan/ghostcord/internal/config"
	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub          *core.Hub
	auth         *auth.Service
	requireToken bool
	maxBytes     int64
	perMinute    int
	log          *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:          hub,
		auth:         authService,
		requireToken: cfg.RequireToken,
		maxBytes:     cfg.MaxMessageBytes,
		perMinute:    cfg.MessagesPerMinute,
		log:          logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.maxBytes > 0 {
		conn.SetReadLimit(h.maxBytes)
	}

	// Unregistering on every exit path is what takes the identity offline,
	// however the connection ended.
	client := core.NewClient(uuid.NewString())
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status, reason := closeStatus(err)
	if status != websocket.StatusNormalClosure {
		h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
	}
	conn.Close(status, reason)
}

// closeStatus picks the status to close with after a loop returned err. A
// peer that closed normally, went away or hit EOF gets a normal closure.
func closeStatus(err error) (websocket.StatusCode, string) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing"
	}
	switch status := websocket.CloseStatus(err); status {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return websocket.StatusNormalClosure, "closing"
	case -1:
		return websocket.StatusInternalError, closeReason(err)
	default:
		return status, closeReason(err)
	}
}

// closeReason fits err into the 123 bytes a close frame allows.
func closeReason(err error) string {
	reason := err.Error()
	if len(reason) > 123 {
		reason = reason[:123]
	}
	return reason
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.perMinute)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("read ws inbound")
			return err
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr == nil && cmd.Kind == core.CommandJoin {
			protoErr = h.checkJoinToken(cmd)
		}
		if protoErr == nil && isMessageCommand(cmd.Kind) && !limiter.allow() {
			protoErr = &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many messages, slow down"}
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-client.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// checkJoinToken requires a valid token naming the same user when tokens are
// enforced. A token sent voluntarily is checked too.
func (h *WSHandler) checkJoinToken(cmd *core.Command) *proto.Error {
	if cmd.Token == "" {
		if h.requireToken {
			return &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "token is required"}
		}
		return nil
	}

	claims, err := h.auth.ValidateToken(cmd.Token)
	if err != nil {
		h.log.Debug().Err(err).Msg("join with invalid token")
		return &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "invalid token"}
	}
	if cmd.Name == "" {
		cmd.Name = claims.Username
	}
	if claims.Username != cmd.Name {
		return &proto.Error{Code: core.ErrCodeUnauthorized, Msg: "token does not match name"}
	}
	return nil
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
