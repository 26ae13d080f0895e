package handler

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
)

// Hub tracks connected websocket clients by user ID and pushes events
// to them. Delivery is best effort: closed or slow connections are
// dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*websocket.Conn]bool)}
}

func (h *Hub) register(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

func (h *Hub) unregister(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], conn)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Push sends an event to every connection of a user.
func (h *Hub) Push(userID uint, event string, payload interface{}) {
	msg, err := json.Marshal(fiber.Map{"event": event, "data": payload})
	if err != nil {
		log.Printf("hub: marshal %s: %v", event, err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.unregister(userID, conn)
			conn.Close()
		}
	}
}

// Upgrade gates the websocket route: the token comes as a query
// parameter because browsers cannot set headers on websocket dials.
func (h *Hub) Upgrade(jwtService *auth.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := jwtService.ValidateToken(c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("wsUserID", claims.UserID)
		return c.Next()
	}
}

// Serve keeps a client connection registered until it closes. Inbound
// frames are read only to detect disconnects.
func (h *Hub) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("wsUserID").(uint)
		if !ok {
			conn.Close()
			return
		}

		h.register(userID, conn)
		defer func() {
			h.unregister(userID, conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
