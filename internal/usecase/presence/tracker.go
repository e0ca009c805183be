// Package presence keeps the live roster of every meeting room: who holds an open realtime
// channel right now. It is process-scoped and never persisted.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// Broadcaster receives the full roster after every change. It is called while the room is
// locked, so implementations must not block.
type Broadcaster interface {
	ParticipantsUpdated(meetingID uuid.UUID, roster []entities.PresenceRecord)
}

// Tracker is the in-memory presence registry.
//
// Lock order: room.mu before Tracker.mu. Tracker.mu alone guards the rooms and
// channels maps and is never held while acquiring a room lock.
type Tracker struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*room
	channels map[string]map[uuid.UUID]uuid.UUID // channelID -> meetingID -> userID

	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

type room struct {
	mu      sync.Mutex
	members map[uuid.UUID]*entities.PresenceRecord
	// dead is set once the room was dropped from the registry; holders of a stale
	// pointer must look the room up again.
	dead bool
}

// NewTracker creates an empty tracker
func NewTracker(broadcaster Broadcaster, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		rooms:       make(map[uuid.UUID]*room),
		channels:    make(map[string]map[uuid.UUID]uuid.UUID),
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// Register adds or refreshes the caller in the meeting roster and returns the new roster.
// A second channel for the same user takes over the record but keeps the original join time.
func (t *Tracker) Register(meetingID uuid.UUID, identity entities.Identity, channelID string) []entities.PresenceRecord {
	for {
		r := t.getOrCreateRoom(meetingID)

		r.mu.Lock()
		if r.dead {
			r.mu.Unlock()
			continue
		}

		now := t.now()
		if rec, ok := r.members[identity.UserID]; ok {
			if rec.ChannelID != channelID {
				t.unindex(rec.ChannelID, meetingID)
			}
			rec.ChannelID = channelID
			rec.FullName = identity.FullName
			rec.Email = identity.Email
			rec.LastSeen = now
		} else {
			r.members[identity.UserID] = &entities.PresenceRecord{
				UserID:    identity.UserID,
				FullName:  identity.FullName,
				Email:     identity.Email,
				ChannelID: channelID,
				JoinedAt:  now,
				LastSeen:  now,
			}
		}
		t.index(channelID, meetingID, identity.UserID)

		roster := r.snapshot()
		t.publish(meetingID, roster)
		r.mu.Unlock()

		t.logger.Debug("presence.register",
			zap.String("meeting_id", meetingID.String()),
			zap.String("user_id", identity.UserID.String()),
			zap.String("channel_id", channelID),
			zap.Int("roster_size", len(roster)),
		)
		return roster
	}
}

// Deregister removes userID from the meeting only when the record still belongs to
// channelID. It reports whether a record was removed.
func (t *Tracker) Deregister(meetingID, userID uuid.UUID, channelID string) bool {
	t.mu.Lock()
	r := t.rooms[meetingID]
	t.mu.Unlock()
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return false
	}

	rec, ok := r.members[userID]
	if !ok || rec.ChannelID != channelID {
		return false
	}
	delete(r.members, userID)

	t.mu.Lock()
	t.unindexLocked(channelID, meetingID)
	if len(r.members) == 0 {
		r.dead = true
		delete(t.rooms, meetingID)
	}
	t.mu.Unlock()

	t.publish(meetingID, r.snapshot())

	t.logger.Debug("presence.deregister",
		zap.String("meeting_id", meetingID.String()),
		zap.String("user_id", userID.String()),
		zap.String("channel_id", channelID),
	)
	return true
}

// DeregisterChannel removes every record owned by channelID, used when a channel drops
// without leaving its meetings. It returns the meetings that changed.
func (t *Tracker) DeregisterChannel(channelID string) []uuid.UUID {
	t.mu.Lock()
	entries := t.channels[channelID]
	delete(t.channels, channelID)
	t.mu.Unlock()

	var changed []uuid.UUID
	for meetingID, userID := range entries {
		if t.Deregister(meetingID, userID, channelID) {
			changed = append(changed, meetingID)
		}
	}
	return changed
}

// List returns the current roster, or an empty list for an unknown meeting.
func (t *Tracker) List(meetingID uuid.UUID) []entities.PresenceRecord {
	t.mu.Lock()
	r := t.rooms[meetingID]
	t.mu.Unlock()
	if r == nil {
		return []entities.PresenceRecord{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return []entities.PresenceRecord{}
	}
	return r.snapshot()
}

// Meetings returns the ids of meetings that currently have at least one live participant.
func (t *Tracker) Meetings() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(t.rooms))
	for id := range t.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops all presence state. Used on shutdown.
func (t *Tracker) Clear() {
	t.mu.Lock()
	rooms := t.rooms
	t.rooms = make(map[uuid.UUID]*room)
	t.channels = make(map[string]map[uuid.UUID]uuid.UUID)
	t.mu.Unlock()

	for _, r := range rooms {
		r.mu.Lock()
		r.dead = true
		r.members = nil
		r.mu.Unlock()
	}
}

func (t *Tracker) getOrCreateRoom(meetingID uuid.UUID) *room {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rooms[meetingID]
	if !ok {
		r = &room{members: make(map[uuid.UUID]*entities.PresenceRecord)}
		t.rooms[meetingID] = r
	}
	return r
}

func (t *Tracker) index(channelID string, meetingID, userID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byMeeting, ok := t.channels[channelID]
	if !ok {
		byMeeting = make(map[uuid.UUID]uuid.UUID)
		t.channels[channelID] = byMeeting
	}
	byMeeting[meetingID] = userID
}

func (t *Tracker) unindex(channelID string, meetingID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unindexLocked(channelID, meetingID)
}

func (t *Tracker) unindexLocked(channelID string, meetingID uuid.UUID) {
	byMeeting, ok := t.channels[channelID]
	if !ok {
		return
	}
	delete(byMeeting, meetingID)
	if len(byMeeting) == 0 {
		delete(t.channels, channelID)
	}
}

func (t *Tracker) publish(meetingID uuid.UUID, roster []entities.PresenceRecord) {
	if t.broadcaster == nil {
		return
	}
	t.broadcaster.ParticipantsUpdated(meetingID, roster)
}

// snapshot copies the roster ordered by join time. Caller holds r.mu.
func (r *room) snapshot() []entities.PresenceRecord {
	roster := make([]entities.PresenceRecord, 0, len(r.members))
	for _, rec := range r.members {
		roster = append(roster, *rec)
	}
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].JoinedAt.Equal(roster[j].JoinedAt) {
			return roster[i].UserID.String() < roster[j].UserID.String()
		}
		return roster[i].JoinedAt.Before(roster[j].JoinedAt)
	})
	return roster
}
