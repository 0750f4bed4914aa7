package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

// LatestFunc returns the most recent tick, if any.
type LatestFunc func() (*models.Tick, error)

// Server upgrades HTTP requests to live dashboard streams.
type Server struct {
	hub          *Hub
	latest       LatestFunc
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(hub *Hub, latest LatestFunc, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		hub:          hub,
		latest:       latest,
		logger:       logger.With(zap.String("component", "ws_server")),
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for the /ws endpoint. The latest tick is
// sent right after the upgrade so a new page does not wait a full interval.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(uuid.NewString(), conn, s.writeTimeout, s.logger, func(id string) {
		s.hub.Remove(id)
		cancel()
	})

	if s.latest != nil {
		if tick, err := s.latest(); err == nil {
			if data, err := json.Marshal(tick); err == nil {
				client.Send(data)
			}
		}
	}

	s.hub.Add(client)
	go client.Start(ctx)
	s.logger.Info("dashboard client connected", zap.String("client_id", client.ID()), zap.String("remote", r.RemoteAddr))
}
