package handler

import (
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/pkg/serverutils"
	internalWS "legalai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler upgrades /api/stream to a websocket carrying typing, stage and draft frames.
// The guard has already verified the token (header or ?token=) before Upgrade runs.
type StreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: log}
}

func (h *StreamHandler) RegisterRoutes(r *serverutils.GuardedRouter) {
	r.Get("/stream", h.Upgrade, websocket.New(h.Serve))
}

func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *StreamHandler) Serve(c *websocket.Conn) {
	userID, _ := c.Locals(serverutils.LocalUserID).(string)
	if userID == "" {
		c.Close()
		return
	}
	h.logger.Info("StreamHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
	internalWS.ServeWs(h.hub, c, userID)
	h.logger.Info("StreamHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
}
