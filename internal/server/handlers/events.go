// Package handlers contains HTTP handlers owned by the server itself
// rather than by a module.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/velora/medialog/internal/events"
	"github.com/velora/medialog/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already allows any origin through the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamEvents upgrades the connection to a websocket and forwards bus
// events to the client until it disconnects. Used by the activity feed
// and the disambiguation UI to react to background mapping saves.
func StreamEvents(c *gin.Context, bus events.EventBus) {
	if bus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event bus not running"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Buffered so a slow client drops events instead of stalling bus delivery.
	stream := make(chan events.Event, 64)

	subID, err := bus.Subscribe("websocket", events.EventFilter{}, func(event events.Event) error {
		select {
		case stream <- event:
		default:
		}
		return nil
	})
	if err != nil {
		logger.Warn("websocket subscribe failed: %v", err)
		return
	}
	defer bus.Unsubscribe(subID)

	// Reader goroutine: we only care about the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-stream:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
