// Package realtime is the websocket side of the meeting service: a hub of authenticated
// connections grouped into per-meeting rooms, and the event fan-out that feeds them.
package realtime

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// Client to server events
const (
	EventJoinMeeting  = "join_meeting"
	EventLeaveMeeting = "leave_meeting"
	EventPing         = "ping"
)

// Server to client events
const (
	EventJoinMeetingAck      = "join_meeting_ack"
	EventLeaveMeetingAck     = "leave_meeting_ack"
	EventParticipantsUpdated = "participants_updated"
	EventPhaseChanged        = "phaseChanged"
	EventMeetingUpdated      = "meetingUpdated"
	EventAuthError           = "auth_error"
	EventError               = "error"
	EventPong                = "pong"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// encode renders an outbound frame.
func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

// MeetingRequest is the body of join_meeting and leave_meeting.
type MeetingRequest struct {
	MeetingID string `json:"meetingId"`
}

// JoinAck answers join_meeting.
type JoinAck struct {
	Success           bool                      `json:"success"`
	MeetingID         string                    `json:"meetingId,omitempty"`
	Participants      []entities.PresenceRecord `json:"participants,omitempty"`
	TotalParticipants int                       `json:"totalParticipants"`
	Error             string                    `json:"error,omitempty"`
}

// LeaveAck answers leave_meeting.
type LeaveAck struct {
	Success   bool   `json:"success"`
	MeetingID string `json:"meetingId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ParticipantsUpdated carries the full roster after a presence change.
type ParticipantsUpdated struct {
	MeetingID         uuid.UUID                 `json:"meetingId"`
	Participants      []entities.PresenceRecord `json:"participants"`
	TotalParticipants int                       `json:"totalParticipants"`
}

// PhaseChanged announces a phase transition.
type PhaseChanged struct {
	MeetingID uuid.UUID              `json:"meetingId"`
	Phase     entities.MeetingPhase  `json:"phase"`
	Status    entities.MeetingStatus `json:"status"`
}

// MeetingUpdated announces a ledger, meeting or task change.
type MeetingUpdated struct {
	MeetingID uuid.UUID `json:"meetingId"`
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthError is sent right before an unauthenticated connection is closed.
type AuthError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorMessage reports a malformed inbound frame.
type ErrorMessage struct {
	Message string `json:"message"`
}
