package handler

import (
	"github.com/Gatu-1548/plagio-ia/internal/pkg/logger"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"
	internalWS "github.com/Gatu-1548/plagio-ia/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StatusHandler streams document_status and upload_progress messages to the
// console tab named by X-Console-Session (or ?tab= for browsers, which cannot
// set headers on the upgrade request).
type StatusHandler struct {
	documents service.IDocumentService
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewStatusHandler(documents service.IDocumentService, hub *internalWS.Hub, log logger.ILogger) *StatusHandler {
	return &StatusHandler{
		documents: documents,
		hub:       hub,
		logger:    log,
	}
}

// ServeWs upgrades the connection. The first frame is the tab's current
// tracking snapshot so a reconnecting client does not wait for the next poll.
func (h *StatusHandler) ServeWs(c *fiber.Ctx) error {
	ws := serverutils.Workspace(c)
	if ws == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing console session")
	}

	if websocket.IsWebSocketUpgrade(c) {
		tabID := ws.ID
		snapshot := h.documents.Tracking(ws)
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StatusHandler", "Starting WebSocket session", map[string]interface{}{"tab_id": tabID})
			internalWS.ServeWs(h.hub, conn, tabID, internalWS.Message(internalWS.MessageDocumentStatus, snapshot))
			h.logger.Info("StatusHandler", "WebSocket session ended", map[string]interface{}{"tab_id": tabID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
