package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
)

// Presence is the roster registry the hub keeps in step with room membership.
type Presence interface {
	Register(meetingID uuid.UUID, identity entities.Identity, channelID string) []entities.PresenceRecord
	Deregister(meetingID, userID uuid.UUID, channelID string) bool
	DeregisterChannel(channelID string) []uuid.UUID
}

// Hub owns every connection on this instance and the meeting rooms they joined.
//
// h.mu guards clients and rooms only. It is never held while calling into Presence,
// because Presence calls back into ParticipantsUpdated while holding its room lock.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	rooms    map[uuid.UUID]map[string]*Client
	presence Presence

	registerCh   chan *Client
	unregisterCh chan *Client
	done         chan struct{}
	stopOnce     sync.Once

	logger *zap.Logger
}

// NewHub creates a hub. Call UsePresence before Run.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:      make(map[string]*Client),
		rooms:        make(map[uuid.UUID]map[string]*Client),
		registerCh:   make(chan *Client),
		unregisterCh: make(chan *Client),
		done:         make(chan struct{}),
		logger:       logger,
	}
}

// UsePresence attaches the roster registry. The tracker is built with the hub as its
// broadcaster, so the two are wired after construction.
func (h *Hub) UsePresence(p Presence) {
	h.presence = p
}

// Run processes connection lifecycle until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()

	for {
		// Shutdown wins over pending lifecycle events.
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.registerCh:
			h.addClient(c)
		case c := <-h.unregisterCh:
			h.removeClient(c)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register hands a new client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.unregisterCh <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	h.logger.Info("realtime client connected",
		zap.String("channel_id", c.id),
		zap.String("user_id", c.identity.UserID.String()),
	)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	for meetingID, members := range h.rooms {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, meetingID)
		}
	}
	n, rooms := len(h.clients), len(h.rooms)
	h.mu.Unlock()

	c.close()
	metrics.WSConnections.Set(float64(n))
	metrics.WSRooms.Set(float64(rooms))

	var changed []uuid.UUID
	if h.presence != nil {
		changed = h.presence.DeregisterChannel(c.id)
	}
	h.logger.Info("realtime client disconnected",
		zap.String("channel_id", c.id),
		zap.String("user_id", c.identity.UserID.String()),
		zap.Int("meetings_left", len(changed)),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.rooms = make(map[uuid.UUID]map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	metrics.WSConnections.Set(0)
	metrics.WSRooms.Set(0)
}

func (h *Hub) join(c *Client, raw string) JoinAck {
	if raw == "" {
		return JoinAck{Success: false, Error: "Meeting ID required"}
	}
	meetingID, err := uuid.Parse(raw)
	if err != nil {
		return JoinAck{Success: false, MeetingID: raw, Error: "Invalid meeting ID"}
	}
	if h.presence == nil {
		return JoinAck{Success: false, MeetingID: raw, Error: "Presence unavailable"}
	}

	// Join the room first so the caller also receives the roster broadcast.
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return JoinAck{Success: false, MeetingID: raw, Error: "Connection closed"}
	}
	members := h.rooms[meetingID]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[meetingID] = members
	}
	members[c.id] = c
	rooms := len(h.rooms)
	h.mu.Unlock()
	metrics.WSRooms.Set(float64(rooms))

	roster := h.presence.Register(meetingID, c.identity, c.id)

	h.logger.Info("participant joined meeting",
		zap.String("meeting_id", meetingID.String()),
		zap.String("user_id", c.identity.UserID.String()),
		zap.String("channel_id", c.id),
	)
	return JoinAck{
		Success:           true,
		MeetingID:         meetingID.String(),
		Participants:      roster,
		TotalParticipants: len(roster),
	}
}

func (h *Hub) leave(c *Client, raw string) LeaveAck {
	if raw == "" {
		return LeaveAck{Success: false, Error: "Meeting ID required"}
	}
	meetingID, err := uuid.Parse(raw)
	if err != nil {
		return LeaveAck{Success: false, MeetingID: raw, Error: "Invalid meeting ID"}
	}

	h.mu.Lock()
	if members := h.rooms[meetingID]; members != nil {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, meetingID)
		}
	}
	rooms := len(h.rooms)
	h.mu.Unlock()
	metrics.WSRooms.Set(float64(rooms))

	if h.presence != nil {
		h.presence.Deregister(meetingID, c.identity.UserID, c.id)
	}

	h.logger.Info("participant left meeting",
		zap.String("meeting_id", meetingID.String()),
		zap.String("user_id", c.identity.UserID.String()),
		zap.String("channel_id", c.id),
	)
	return LeaveAck{Success: true, MeetingID: meetingID.String()}
}

// ParticipantsUpdated implements presence.Broadcaster. It only queues frames, so it is
// safe to call while the tracker holds a room lock.
func (h *Hub) ParticipantsUpdated(meetingID uuid.UUID, roster []entities.PresenceRecord) {
	metrics.RosterSize.Observe(float64(len(roster)))
	h.Publish(meetingID, EventParticipantsUpdated, ParticipantsUpdated{
		MeetingID:         meetingID,
		Participants:      roster,
		TotalParticipants: len(roster),
	})
}

// Publish sends one event to every connection in the meeting room on this instance.
// Slow clients lose the frame; nothing blocks.
func (h *Hub) Publish(meetingID uuid.UUID, event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("failed to encode realtime frame", zap.String("event", event), zap.Error(err))
		return
	}

	sent, dropped := 0, 0
	h.mu.RLock()
	for _, c := range h.rooms[meetingID] {
		if c.enqueue(frame) {
			sent++
		} else {
			dropped++
		}
	}
	h.mu.RUnlock()

	if sent > 0 {
		metrics.WSMessagesSent.WithLabelValues(event).Add(float64(sent))
	}
	if dropped > 0 {
		metrics.WSMessagesDropped.WithLabelValues(event).Add(float64(dropped))
		h.logger.Warn("realtime broadcast dropped for slow clients",
			zap.String("meeting_id", meetingID.String()),
			zap.String("event", event),
			zap.Int("dropped", dropped),
		)
	}
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of connections subscribed to a meeting.
func (h *Hub) RoomSize(meetingID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[meetingID])
}
