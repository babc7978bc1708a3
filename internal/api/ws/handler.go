package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/catalog/internal/domain/ranking"
)

const (
	msgConnected = "connected"
	msgResult    = "result"
	msgStart     = "start"
	msgAck       = "ack"
	msgPong      = "pong"
	msgError     = "error"

	msgQuery     = "query"
	msgActivate  = "activate"
	msgSecondary = "secondary"
	msgPing      = "ping"
)

// Engine is the part of the catalog engine the stream needs.
type Engine interface {
	Watch(ctx context.Context) <-chan ranking.Result
	SetQuery(query string) error
	Activate(ctx context.Context, itemID string) error
	SecondaryActivate(ctx context.Context, itemID string) error
}

// message is the envelope of every frame in both directions.
type message struct {
	Type      string          `json:"type"`
	ConnID    string          `json:"conn_id,omitempty"`
	Action    string          `json:"action,omitempty"`
	Query     string          `json:"query,omitempty"`
	ItemID    string          `json:"item_id,omitempty"`
	Result    *ranking.Result `json:"result,omitempty"`
	Request   any             `json:"request,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local presentation clients only
	},
}

// Handler upgrades connections and serves the catalog stream.
type Handler struct {
	hub    *Hub
	engine Engine
	logger *zap.Logger
}

// NewHandler creates a stream handler.
func NewHandler(hub *Hub, engine Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, engine: engine, logger: logger.Named("ws")}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl := &client{id: uuid.NewString(), conn: conn}
	h.hub.register(cl)
	defer h.hub.unregister(cl)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := h.send(cl, message{Type: msgConnected, ConnID: cl.id}); err != nil {
		return
	}
	go h.streamResults(ctx, cl)

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("WebSocket read error", zap.String("conn_id", cl.id), zap.Error(err))
			}
			return
		}
		h.hub.metrics.RecordWSMessage("in", msg.Type)
		h.handle(ctx, cl, msg)
	}
}

func (h *Handler) handle(ctx context.Context, cl *client, msg message) {
	var err error
	switch msg.Type {
	case msgQuery:
		err = h.engine.SetQuery(msg.Query)
	case msgActivate:
		err = h.engine.Activate(ctx, msg.ItemID)
	case msgSecondary:
		err = h.engine.SecondaryActivate(ctx, msg.ItemID)
	case msgPing:
		h.send(cl, message{Type: msgPong})
		return
	default:
		err = errors.New("unknown message type")
	}

	if err != nil {
		h.sendError(cl, err.Error())
		return
	}
	h.send(cl, message{Type: msgAck, Action: msg.Type, ItemID: msg.ItemID, Query: msg.Query})
}

// streamResults forwards every ranked result until ctx ends. Results are
// latest-only, so a slow client skips intermediate ones.
func (h *Handler) streamResults(ctx context.Context, cl *client) {
	for result := range h.engine.Watch(ctx) {
		if err := h.send(cl, message{Type: msgResult, Result: &result}); err != nil {
			h.logger.Debug("Result delivery failed", zap.String("conn_id", cl.id), zap.Error(err))
			return
		}
	}
}

func (h *Handler) send(cl *client, msg message) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	if err := cl.send(msg); err != nil {
		return err
	}
	h.hub.metrics.RecordWSMessage("out", msg.Type)
	return nil
}

func (h *Handler) sendError(cl *client, text string) error {
	return h.send(cl, message{Type: msgError, Message: text})
}
