package handlers

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/scamwall/scamwall-backend/internal/feed"
)

// FeedHandler streams newly created reports to connected viewers over
// a websocket. A viewer that wants a different category filter drops
// the connection and reconnects; history comes from GET /api/reports.
type FeedHandler struct {
	broker *feed.Broker
}

func NewFeedHandler(broker *feed.Broker) *FeedHandler {
	return &FeedHandler{broker: broker}
}

// Upgrade gates the route: only websocket upgrade requests proceed to
// Stream. The category filter is captured here because the fiber
// context is gone once the connection is hijacked.
func (h *FeedHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("category", c.Query("category"))
	return c.Next()
}

func (h *FeedHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		category, _ := conn.Locals("category").(string)

		events, cancel, err := h.broker.Subscribe(feed.CategoryFilter(category))
		if err != nil {
			conn.Close()
			return
		}
		// The subscription must not outlive the connection.
		defer cancel()

		// Reads only serve to notice the peer going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case report, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(report); err != nil {
					slog.Debug("feed write failed, dropping viewer", "error", err)
					return
				}
			case <-closed:
				return
			}
		}
	})
}
