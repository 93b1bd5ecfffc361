package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/internal/auth"
	"github.com/satriahrh/voxtag/internal/session"
	"github.com/satriahrh/voxtag/internal/websocket"
	"github.com/satriahrh/voxtag/usecase"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Sessions   *session.Manager
	Recordings *usecase.RecordingService
	Combiner   *usecase.Combiner
	Issuer     *auth.TokenIssuer
	Hub        *websocket.Hub
	// APIKey is the default transcription credential; clients may override
	// it per request with the X-Transcription-Key header.
	APIKey string
	// Metrics serves GET /metrics when set
	Metrics http.Handler
	Logger  *zap.Logger
}

type handler struct {
	Dependencies
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies) {
	h := &handler{Dependencies: deps}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voxtag-server",
		})
	})

	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/sessions", h.createSession)
	v1.GET("/tags", h.listTags)

	authed := v1.Group("", requireSession(deps.Issuer, deps.Sessions, deps.Logger))
	authed.DELETE("/sessions", h.deleteSession)

	// Recording APIs
	authed.POST("/recordings", h.saveRecording)
	authed.GET("/recordings", h.listRecordings)
	authed.GET("/recordings/:id", h.getRecording)
	authed.GET("/recordings/:id/audio", h.getRecordingAudio)
	authed.PUT("/recordings/:id/tag", h.updateTag)
	authed.PUT("/recordings/:id/selected", h.updateSelected)
	authed.DELETE("/recordings/:id", h.deleteRecording)

	// Combine APIs
	authed.POST("/combine", h.combine)
	authed.GET("/audio/:filename", h.getCombinedAudio)

	authed.POST("/webhook", h.webhook)

	// WebSocket endpoint with JWT validation
	e.GET("/ws", h.websocket, requireSession(deps.Issuer, deps.Sessions, deps.Logger))
}

func (h *handler) websocket(c echo.Context) error {
	id := sessionID(c)
	h.Logger.Info("WebSocket connection authenticated", zap.String("sessionID", id))
	return websocket.HandleWebSocket(h.Hub, c, id, h.Logger)
}
