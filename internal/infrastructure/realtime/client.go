package realtime

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

// Conn is the subset of *websocket.Conn used by a client.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one authenticated realtime connection. Its id is the channel id the presence
// tracker records.
type Client struct {
	id       string
	identity entities.Identity
	hub      *Hub
	conn     Conn
	send     chan []byte
	limiter  *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection. A nil limiter disables inbound rate limiting.
func NewClient(hub *Hub, conn Conn, identity entities.Identity, limiter *rate.Limiter) *Client {
	return &Client{
		id:       uuid.NewString(),
		identity: identity,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		limiter:  limiter,
	}
}

// ID returns the channel id
func (c *Client) ID() string {
	return c.id
}

// Identity returns the authenticated caller
func (c *Client) Identity() entities.Identity {
	return c.identity
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// enqueue queues a frame without blocking. It returns false when the buffer is full or
// the client is already closed.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// emit encodes and queues a frame addressed to this client only.
func (c *Client) emit(event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		c.hub.logger.Error("failed to encode realtime frame", zap.String("event", event), zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		metrics.RecordWSMessageDropped(event)
		c.hub.logger.Warn("realtime frame dropped",
			zap.String("event", event),
			zap.String("channel_id", c.id),
		)
		return
	}
	metrics.RecordWSMessageSent(event)
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected websocket close", zap.String("channel_id", c.id), zap.Error(err))
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.WSRateLimited.Inc()
			continue
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.emit(EventError, ErrorMessage{Message: "Malformed message"})
			continue
		}
		metrics.RecordWSMessageReceived(msg.Event)
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Envelope) {
	switch msg.Event {
	case EventPing:
		c.emit(EventPong, nil)
	case EventJoinMeeting:
		req, ok := c.meetingRequest(msg)
		if !ok {
			return
		}
		c.emit(EventJoinMeetingAck, c.hub.join(c, req.MeetingID))
	case EventLeaveMeeting:
		req, ok := c.meetingRequest(msg)
		if !ok {
			return
		}
		c.emit(EventLeaveMeetingAck, c.hub.leave(c, req.MeetingID))
	default:
		c.emit(EventError, ErrorMessage{Message: "Unknown event: " + msg.Event})
	}
}

// meetingRequest decodes a join or leave body. An empty body is a request without a meeting id.
func (c *Client) meetingRequest(msg Envelope) (MeetingRequest, bool) {
	var req MeetingRequest
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return req, true
	}
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.emit(EventError, ErrorMessage{Message: "Malformed message"})
		return req, false
	}
	return req, true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.hub.logger.Debug("websocket write failed", zap.String("channel_id", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Reject sends auth_error on a freshly upgraded connection and closes it.
func Reject(conn Conn, message, code string) error {
	defer conn.Close()

	frame, err := encode(EventAuthError, AuthError{Message: message, Code: code})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return err
	}
	closing := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message)
	return conn.WriteMessage(websocket.CloseMessage, closing)
}
