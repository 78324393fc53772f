package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/chat"
	"zerobin/client/internal/config"
	"zerobin/client/internal/middleware"
	"zerobin/client/internal/notify"
	"zerobin/client/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	backend  *api.Client
	sessions *session.Manager
	hub      *chat.Hub
	toasts   *notify.Center
	cache    *redis.Client
}

// NewHandlerSet wires the client-facing surface. cache may be nil when
// redis is disabled; the sentiment proxy then runs uncached.
func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	backend *api.Client,
	sessions *session.Manager,
	hub *chat.Hub,
	toasts *notify.Center,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		backend:  backend,
		sessions: sessions,
		hub:      hub,
		toasts:   toasts,
		cache:    cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.RegisterUser)
	auth.POST("/logout", h.Logout)
	auth.GET("/session", h.Session)

	router.GET("/notifications", h.Notifications)

	chats := router.Group("/chats")
	chats.Use(middleware.Gate(h.sessions))
	chats.GET("/listing/:listingId", h.ChatForListing)
	chats.GET("/:id", h.ChatView)
	chats.POST("/:id/messages", h.SendMessage)
	chats.POST("/:id/confirm-deal", h.ConfirmDeal)
	chats.DELETE("/:id/watch", h.UnwatchChat)

	router.POST("/sentiment", h.Sentiment)
	router.GET("/hotspots", h.Hotspots)
}

type healthResponse struct {
	Status      string `json:"status"`
	Cache       string `json:"cache"`
	Backend     string `json:"backend"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Cache:       cacheStatus,
		Backend:     h.backend.BaseURL(),
		Environment: h.cfg.Environment,
	})
}

func (h HandlerSet) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.toasts.Drain(),
	})
}
