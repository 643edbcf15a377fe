package handler

import (
	"os"

	"vibe-curation-be/internal/pkg/logger"
	"vibe-curation-be/internal/repository/memory"
	internalWS "vibe-curation-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionFeedHandler upgrades watchers onto the live state feed of one
// curation session.
type SessionFeedHandler struct {
	sessions *memory.SessionRepository
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewSessionFeedHandler(sessions *memory.SessionRepository, hub *internalWS.Hub, log logger.ILogger) *SessionFeedHandler {
	return &SessionFeedHandler{
		sessions: sessions,
		hub:      hub,
		logger:   log,
	}
}

// ServeWs handles websocket requests for a session feed. Authentication
// mirrors the REST middleware: with JWT_SECRET unset the handshake is open.
func (h *SessionFeedHandler) ServeWs(c *fiber.Ctx) error {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		// Browsers cannot set headers on the handshake, so the token comes
		// from the query first, then the Authorization header.
		tokenStr := c.Query("token")
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				tokenStr = authHeader[7:]
			}
		}
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			h.logger.Warn("SessionFeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
	}

	sessionID := c.Params("id")
	if _, ok := h.sessions.Get(sessionID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionFeedHandler", "Feed opened", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionFeedHandler", "Feed closed", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the feed route.
func (h *SessionFeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/curation/:id", h.ServeWs)
}
