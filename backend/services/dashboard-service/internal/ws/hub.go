package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

// Hub tracks connected clients and fans ticks out to them.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*Client
	pingInterval time.Duration
	onCount      func(int)
	logger       *zap.Logger
}

// NewHub builds a hub. onCount, when set, is called with the client count
// after every change.
func NewHub(pingInterval time.Duration, logger *zap.Logger, onCount func(int)) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:      make(map[string]*Client),
		pingInterval: pingInterval,
		onCount:      onCount,
		logger:       logger.With(zap.String("component", "ws_hub")),
	}
}

// Add registers a client.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c.ID()] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.report(n)
}

// Remove forgets a client.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()
	h.report(n)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) report(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// Name identifies the hub as a publisher.
func (h *Hub) Name() string { return "ws" }

// Publish encodes the tick once and queues it for every client.
func (h *Hub) Publish(_ context.Context, tick *models.Tick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("ws hub: encode tick: %w", err)
	}
	h.Broadcast(data)
	return nil
}

// Broadcast queues a raw message for every client.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(data)
	}
}

// Start pings clients until ctx is done, then closes them.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.mu.RLock()
			for _, c := range h.clients {
				if err := c.Ping(); err != nil {
					h.logger.Debug("ping failed", zap.String("client_id", c.ID()), zap.Error(err))
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.Close()
	}
}
