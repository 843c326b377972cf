package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ghostcord/internal/proto"
	"github.com/vovakirdan/ghostcord/internal/service/friends"
)

// FriendsHandlers exposes the caller's friend list. Friend mutations go
// through the socket so the other party is notified live.
type FriendsHandlers struct {
	service *friends.Service
	log     *zerolog.Logger
}

// NewFriendsHandlers creates a new friends handlers instance.
func NewFriendsHandlers(svc *friends.Service, logger *zerolog.Logger) *FriendsHandlers {
	return &FriendsHandlers{
		service: svc,
		log:     logger,
	}
}

// ListFriends lists friends and requests with the caller's view of each.
// GET /api/me/friends
func (h *FriendsHandlers) ListFriends(c *gin.Context) {
	username, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	views, err := h.service.List(c.Request.Context(), username)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("failed to list friends")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]proto.Friend, 0, len(views))
	for _, v := range views {
		out = append(out, proto.Friend{Username: v.Username, Status: v.Status})
	}
	c.JSON(http.StatusOK, proto.EventFriends{Friends: out})
}
