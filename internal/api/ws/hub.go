package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/shared/types"
)

const writeTimeout = 5 * time.Second

// client is one connection. gorilla connections allow a single concurrent
// writer, so every write goes through send.
type client struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
}

func (c *client) send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Hub tracks connected clients. It is the engine's start sink: every start
// request is broadcast to all clients, which execute it on the host.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger.Named("ws"),
	}
}

// WithMetrics enables connection and message metrics.
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Start broadcasts req. A request with no connected client is dropped with
// a warning; failing clients are logged and left to their read loop.
func (h *Hub) Start(_ context.Context, req types.StartRequest) error {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.logger.Warn("No client to execute start request",
			zap.String("action", string(req.Action)),
			zap.String("target", req.Target))
		return nil
	}

	msg := message{Type: msgStart, Request: &req, Timestamp: time.Now().Unix()}
	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.logger.Warn("Start request delivery failed",
				zap.String("conn_id", c.id),
				zap.Error(err))
			continue
		}
		h.metrics.RecordWSMessage("out", msgStart)
	}
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.metrics.IncWSConnections()
	h.logger.Debug("Client connected", zap.String("conn_id", c.id))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()
	if ok {
		h.metrics.DecWSConnections()
		h.logger.Debug("Client disconnected", zap.String("conn_id", c.id))
	}
}
