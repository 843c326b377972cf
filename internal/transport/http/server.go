package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ghostcord/internal/auth"
	"github.com/vovakirdan/ghostcord/internal/config"
	"github.com/vovakirdan/ghostcord/internal/core"
	"github.com/vovakirdan/ghostcord/internal/service/friends"
	"github.com/vovakirdan/ghostcord/internal/service/servers"
	"github.com/vovakirdan/ghostcord/internal/store"
)

// NewServer builds the HTTP server: REST endpoints plus the WebSocket relay.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, authService, st, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter wires routes onto a gin engine.
func NewRouter(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, logger)
	serverHandlers := NewServerHandlers(servers.New(st), st, logger)
	friendsHandlers := NewFriendsHandlers(friends.New(st), logger)

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	api := router.Group("/api")
	api.POST("/signup", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)
	api.GET("/servers", serverHandlers.ListServers)
	api.GET("/servers/:id/messages", serverHandlers.ChannelHistory)

	me := api.Group("/me", AuthMiddleware(authService, logger))
	me.GET("/servers", serverHandlers.MyServers)
	me.GET("/friends", friendsHandlers.ListFriends)
	me.DELETE("", apiHandlers.DeleteAccount)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
