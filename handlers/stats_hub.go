package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gbme/platform-assistant/logger"
)

const writeWait = 10 * time.Second

// StatsHub pushes statistics to websocket clients on connect and then every interval.
type StatsHub struct {
	api      *API
	interval time.Duration
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	send     func(conn *websocket.Conn, data []byte) error

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

// NewStatsHub builds a hub. checkOrigin may be nil to accept every origin.
func NewStatsHub(api *API, interval time.Duration, checkOrigin func(r *http.Request) bool) *StatsHub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	h := &StatsHub{
		api:      api,
		interval: interval,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		logger:   logger.Component("stats"),
		clients:  make(map[*websocket.Conn]struct{}),
	}
	h.send = h.write
	return h
}

// ServeHTTP upgrades GET /ws/stats and keeps the client registered until it disconnects.
func (h *StatsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	// The first snapshot is written before the client is registered, so the
	// broadcaster is the only writer afterwards.
	data, err := h.snapshot(r.Context())
	if err != nil || h.write(conn, data) != nil {
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = struct{}{}
	h.clientsMu.Unlock()
	h.logger.Debug().Msg("websocket client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.clientsMu.Lock()
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	h.logger.Debug().Msg("websocket client disconnected")
}

// Run broadcasts until ctx is done. Statistics are only computed while clients are connected.
func (h *StatsHub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.clientCount() == 0 {
				continue
			}
			data, err := h.snapshot(ctx)
			if err != nil {
				continue
			}
			h.broadcast(data)
		}
	}
}

func (h *StatsHub) snapshot(ctx context.Context) ([]byte, error) {
	data, err := json.Marshal(h.api.statistics(ctx))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode statistics")
	}
	return data, err
}

// broadcast copies the client set under the lock and writes outside it.
// Clients whose write fails are dropped.
func (h *StatsHub) broadcast(data []byte) {
	h.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clientsMu.Unlock()

	for _, conn := range conns {
		if err := h.send(conn, data); err != nil {
			h.logger.Debug().Err(err).Msg("dropping websocket client")
			_ = conn.Close()
			h.clientsMu.Lock()
			delete(h.clients, conn)
			h.clientsMu.Unlock()
		}
	}
}

func (h *StatsHub) write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (h *StatsHub) clientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *StatsHub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
