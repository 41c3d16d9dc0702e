package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fundflow/backend/internal/auth"
	"github.com/fundflow/backend/internal/config"
	"github.com/fundflow/backend/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wsConn is the write surface the hub needs from a websocket connection.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// wsClient serializes writes to one connection. Both event streams fan out
// through the hub concurrently, and the websocket library forbids
// concurrent writers on a single connection.
type wsClient struct {
	mu   sync.Mutex
	conn wsConn
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]*wsClient
}

func NewWSHub(cfg *config.Config, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]*wsClient),
	}
}

// Start fans registry and campaign events out to every connected client.
func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamRegistry, func(event events.Event) {
		h.broadcast(event)
	})
	_ = h.subscriber.Subscribe(ctx, events.StreamCampaign, func(event events.Event) {
		h.broadcast(event)
	})
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.connections {
		for _, client := range clients {
			_ = client.write(data)
		}
	}
}

func (h *WSHub) register(accountID uuid.UUID, conn wsConn) *wsClient {
	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.connections[accountID] = append(h.connections[accountID], client)
	h.mu.Unlock()
	return client
}

func (h *WSHub) unregister(accountID uuid.UUID, client *wsClient) {
	h.mu.Lock()
	clients := h.connections[accountID]
	for i, c := range clients {
		if c == client {
			h.connections[accountID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.connections[accountID]) == 0 {
		delete(h.connections, accountID)
	}
	h.mu.Unlock()
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Extract token from query
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	accountID := claims.AccountID
	client := h.register(accountID, conn)

	defer func() {
		h.unregister(accountID, client)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
