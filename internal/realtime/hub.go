package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

// ErrSessionTaken is returned when a session id is already connected.
var ErrSessionTaken = errors.New("realtime session already connected")

const (
	dropBufferFull  = "buffer_full"
	dropWriteFailed = "write_failed"
)

// Client is one connected session.
type Client struct {
	ID     string
	UserID int64

	send chan []byte
	hub  *Hub
}

// Hub tracks connected sessions. Every client has its own buffered queue
// and write goroutine, so a slow or broken subscriber only loses its own
// messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byID    map[string]*Client

	cfg     config.RealtimeConfig
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

var _ Publisher = (*Hub)(nil)

func NewHub(cfg config.RealtimeConfig, log *zap.Logger, m *metrics.Collector) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byID:    make(map[string]*Client),
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// NewClient creates an unregistered client. An empty id gets a random one.
func (h *Hub) NewClient(id string, userID int64) *Client {
	if id == "" {
		id = uuid.NewString()
	}
	return &Client{
		ID:     id,
		UserID: userID,
		send:   make(chan []byte, h.cfg.SendBufferSize),
		hub:    h,
	}
}

// Register adds c unless another client already holds its id.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	if _, taken := h.byID[c.ID]; taken {
		h.mu.Unlock()
		return ErrSessionTaken
	}
	h.clients[c] = struct{}{}
	h.byID[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.RealtimeSessions.Set(float64(n))
	h.log.Debug("realtime session registered", zap.String("session", c.ID), zap.Int64("user_id", c.UserID))
	return nil
}

// Unregister removes c and closes its queue. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	delete(h.byID, c.ID)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.metrics.RealtimeSessions.Set(float64(n))
	h.log.Debug("realtime session unregistered", zap.String("session", c.ID))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish wraps data in an envelope and sends it to every session except
// the one recorded on ctx by WithOrigin.
func (h *Hub) Publish(ctx context.Context, eventType EventType, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("failed to encode realtime event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	h.Broadcast(Event{Type: eventType, Data: raw, Timestamp: h.now()}, OriginFrom(ctx))
}

// Broadcast delivers ev to every client whose id differs from exclude.
// A full client queue drops the event for that client only.
func (h *Hub) Broadcast(ev Event, exclude string) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode realtime envelope", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}
	h.metrics.BroadcastPublished.WithLabelValues(string(ev.Type)).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if exclude != "" && c.ID == exclude {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.metrics.BroadcastDropped.WithLabelValues(dropBufferFull).Inc()
			h.log.Warn("realtime client queue full, dropping event",
				zap.String("session", c.ID),
				zap.String("type", string(ev.Type)),
			)
		}
	}
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	clear(h.byID)
	h.mu.Unlock()
	h.metrics.RealtimeSessions.Set(0)
}

// Serve registers a session for ws and runs its pumps until the connection
// ends. It blocks in the read loop. A session id that is already connected
// is refused with a policy-violation close.
func (h *Hub) Serve(ws *websocket.Conn, sessionID string, userID int64) error {
	c := h.NewClient(sessionID, userID)
	if err := h.Register(c); err != nil {
		h.log.Warn("refusing duplicate realtime session", zap.String("session", c.ID), zap.Int64("user_id", userID))
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(h.cfg.WriteWait))
		_ = ws.Close()
		return err
	}

	go c.writePump(ws)
	c.readPump(ws)
	return nil
}

func (c *Client) readPump(ws *websocket.Conn) {
	h := c.hub
	defer func() {
		h.Unregister(c)
		_ = ws.Close()
	}()

	ws.SetReadLimit(h.cfg.MaxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Info("realtime session closed unexpectedly", zap.String("session", c.ID), zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(payload, &msg); err != nil || msg.Type == "" {
			h.log.Debug("dropping malformed realtime message", zap.String("session", c.ID))
			continue
		}
		if len(msg.Data) == 0 {
			msg.Data = json.RawMessage("null")
		}
		h.Broadcast(Event{Type: msg.Type, Data: msg.Data, Timestamp: h.now()}, c.ID)
	}
}

func (c *Client) writePump(ws *websocket.Conn) {
	h := c.hub
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.metrics.BroadcastDropped.WithLabelValues(dropWriteFailed).Inc()
				h.log.Warn("realtime write failed, dropping session", zap.String("session", c.ID), zap.Error(err))
				h.Unregister(c)
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(c)
				return
			}
		}
	}
}
