package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/proto"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store"
)

// ServerHandlers exposes read-only server and history endpoints.
type ServerHandlers struct {
	service *servers.Service
	store   store.MessageStore
	log     *zerolog.Logger
}

// NewServerHandlers creates a new server handlers instance.
func NewServerHandlers(svc *servers.Service, st store.MessageStore, logger *zerolog.Logger) *ServerHandlers {
	return &ServerHandlers{
		service: svc,
		store:   st,
		log:     logger,
	}
}

// ListServers lists every server.
// GET /api/servers
func (h *ServerHandlers) ListServers(c *gin.Context) {
	infos, err := h.service.ListServers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list servers")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, serversFromStore(infos))
}

// MyServers lists the servers the caller belongs to.
// GET /api/me/servers
func (h *ServerHandlers) MyServers(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	infos, err := h.service.ListServersForUser(c.Request.Context(), username)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("failed to list user servers")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, serversFromStore(infos))
}

// ChannelHistory returns the latest messages of a channel, oldest first.
// GET /api/servers/:id/messages?channel=general
func (h *ServerHandlers) ChannelHistory(c *gin.Context) {
	serverID := c.Param("id")
	channel := c.DefaultQuery("channel", store.DefaultChannel)

	recs, err := h.store.ListChannelMessages(c.Request.Context(), serverID, channel, core.HistoryLimit)
	if err != nil {
		h.log.Error().Err(err).Str("server_id", serverID).Str("channel", channel).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages := make([]proto.EventMessage, 0, len(recs))
	for _, rec := range recs {
		messages = append(messages, proto.EventMessage{
			ID:      rec.ID,
			Server:  rec.ServerID,
			Channel: rec.Channel,
			From:    rec.Username,
			Text:    rec.Text,
			TS:      rec.CreatedAt.Unix(),
		})
	}
	c.JSON(http.StatusOK, proto.EventMessages{Server: serverID, Channel: channel, Messages: messages})
}

func serversFromStore(infos []*store.ServerInfo) []proto.Server {
	out := make([]proto.Server, 0, len(infos))
	for _, info := range infos {
		out = append(out, proto.Server{
			ID:       info.ID,
			Name:     info.Name,
			Owner:    info.Owner,
			Channels: info.Channels,
			Members:  info.Members,
		})
	}
	return out
}
