package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// LiveMessage is a frame pushed to dashboard subscribers.
type LiveMessage struct {
	Type string `json:"type"` // stats, financial, error
	Data any    `json:"data"`
}

// LiveHandler streams fresh dashboard payloads over a WebSocket.
type LiveHandler struct {
	src      StatsSource
	interval time.Duration
}

// NewLiveHandler creates a LiveHandler that recomputes every interval.
func NewLiveHandler(src StatsSource, interval time.Duration) *LiveHandler {
	return &LiveHandler{src: src, interval: interval}
}

// ServeHTTP upgrades to WebSocket, sends both payloads immediately and then
// once per interval until the client goes away.
// GET /api/dashboard/live
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("live: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx once the peer disconnects.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		if err := h.push(ctx, conn, owner); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Printf("live: push to %s: %v", owner, err)
			}
			return
		}
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

// push writes one stats frame and one financial frame. Aggregation failures
// are reported in-band and the stream keeps going; only write failures end it.
func (h *LiveHandler) push(ctx context.Context, conn *websocket.Conn, owner string) error {
	stats, err := h.src.BuildDashboardStats(ctx, owner)
	if err != nil {
		return h.sendError(ctx, conn, err)
	}
	if err := h.send(ctx, conn, LiveMessage{Type: "stats", Data: stats}); err != nil {
		return err
	}
	fin, err := h.src.BuildFinancialStats(ctx, owner)
	if err != nil {
		return h.sendError(ctx, conn, err)
	}
	return h.send(ctx, conn, LiveMessage{Type: "financial", Data: fin})
}

func (h *LiveHandler) send(ctx context.Context, conn *websocket.Conn, msg LiveMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func (h *LiveHandler) sendError(ctx context.Context, conn *websocket.Conn, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Printf("live: aggregation failed: %v", err)
	return h.send(ctx, conn, LiveMessage{
		Type: "error",
		Data: map[string]string{"code": "INTERNAL_ERROR", "error": "internal server error"},
	})
}
