package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingPhase is the workflow stage of a meeting
type MeetingPhase string

const (
	PhaseEmotionalEvaluation       MeetingPhase = "emotional_evaluation"
	PhaseUnderstandingContribution MeetingPhase = "understanding_contribution"
	PhaseTaskPlanning              MeetingPhase = "task_planning"
	PhaseTaskEvaluation            MeetingPhase = "task_evaluation"
	PhaseFinished                  MeetingPhase = "finished"
)

// Phases lists every phase in workflow order.
var Phases = []MeetingPhase{
	PhaseEmotionalEvaluation,
	PhaseUnderstandingContribution,
	PhaseTaskPlanning,
	PhaseTaskEvaluation,
	PhaseFinished,
}

// IsValid checks if the phase is known
func (p MeetingPhase) IsValid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// MeetingStatus represents the lifecycle status of a meeting
type MeetingStatus string

const (
	MeetingStatusUpcoming MeetingStatus = "upcoming"
	MeetingStatusActive   MeetingStatus = "active"
	MeetingStatusFinished MeetingStatus = "finished"
)

// ActiveParticipant is a durable presence entry recorded by the join/leave endpoints.
type ActiveParticipant struct {
	ParticipantID uuid.UUID `json:"participantId"`
	JoinedAt      time.Time `json:"joinedAt"`
	LastSeen      time.Time `json:"lastSeen"`
}

// Meeting is the aggregate root. Ledgers and durable presence are stored inline as jsonb
// and only ever change through the meeting row.
type Meeting struct {
	ID                         uuid.UUID                                      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                      string                                         `gorm:"type:varchar(255);not null" json:"title"`
	Question                   string                                         `gorm:"type:text;not null" json:"question"`
	CreatorID                  uuid.UUID                                      `gorm:"type:uuid;not null;index" json:"creatorId"`
	ParticipantIDs             datatypes.JSONSlice[uuid.UUID]                 `gorm:"type:jsonb;not null;default:'[]'" json:"participantIds"`
	CurrentPhase               MeetingPhase                                   `gorm:"type:varchar(40);not null;default:'emotional_evaluation'" json:"currentPhase"`
	Status                     MeetingStatus                                  `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	UpcomingDate               time.Time                                      `gorm:"not null;index" json:"upcomingDate"`
	EmotionalEvaluations       datatypes.JSONSlice[EmotionalEvaluation]       `gorm:"type:jsonb;not null;default:'[]'" json:"emotionalEvaluations"`
	UnderstandingContributions datatypes.JSONSlice[UnderstandingContribution] `gorm:"type:jsonb;not null;default:'[]'" json:"understandingContributions"`
	TaskPlannings              datatypes.JSONSlice[TaskPlanning]              `gorm:"type:jsonb;not null;default:'[]'" json:"taskPlannings"`
	TaskEvaluations            datatypes.JSONSlice[TaskEvaluation]            `gorm:"type:jsonb;not null;default:'[]'" json:"taskEvaluations"`
	ActiveParticipants         datatypes.JSONSlice[ActiveParticipant]         `gorm:"type:jsonb;not null;default:'[]'" json:"activeParticipants"`
	CreatedAt                  time.Time                                      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                  time.Time                                      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting builds a meeting owned by creatorID. The creator is always a participant and
// the meeting starts active unless upcomingDate lies in the future.
func NewMeeting(title, question string, creatorID uuid.UUID, participantIDs []uuid.UUID, upcomingDate *time.Time, now time.Time) *Meeting {
	m := &Meeting{
		ID:                         uuid.New(),
		Title:                      title,
		Question:                   question,
		CreatorID:                  creatorID,
		CurrentPhase:               PhaseEmotionalEvaluation,
		Status:                     MeetingStatusActive,
		UpcomingDate:               now,
		ParticipantIDs:             datatypes.JSONSlice[uuid.UUID]{},
		EmotionalEvaluations:       datatypes.JSONSlice[EmotionalEvaluation]{},
		UnderstandingContributions: datatypes.JSONSlice[UnderstandingContribution]{},
		TaskPlannings:              datatypes.JSONSlice[TaskPlanning]{},
		TaskEvaluations:            datatypes.JSONSlice[TaskEvaluation]{},
		ActiveParticipants:         datatypes.JSONSlice[ActiveParticipant]{},
	}
	m.SetParticipants(participantIDs)

	if upcomingDate != nil {
		m.UpcomingDate = *upcomingDate
		if upcomingDate.After(now) {
			m.Status = MeetingStatusUpcoming
		}
	}
	return m
}

// SetParticipants replaces the durable membership, dropping duplicates and keeping the creator.
func (m *Meeting) SetParticipants(ids []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids)+1)
	out := make(datatypes.JSONSlice[uuid.UUID], 0, len(ids)+1)
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if _, ok := seen[m.CreatorID]; !ok {
		out = append(out, m.CreatorID)
	}
	m.ParticipantIDs = out
}

// IsCreator reports whether userID owns the meeting
func (m *Meeting) IsCreator(userID uuid.UUID) bool {
	return m.CreatorID == userID
}

// IsParticipant reports whether userID is a durable member
func (m *Meeting) IsParticipant(userID uuid.UUID) bool {
	for _, id := range m.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFinished checks if the meeting has finished
func (m *Meeting) IsFinished() bool {
	return m.Status == MeetingStatusFinished
}

// ChangePhase moves the meeting to phase and keeps status consistent with it:
// finished forces status finished, any other phase makes an upcoming or finished meeting active.
func (m *Meeting) ChangePhase(phase MeetingPhase) {
	m.CurrentPhase = phase
	if phase == PhaseFinished {
		m.Status = MeetingStatusFinished
		return
	}
	if m.Status == MeetingStatusUpcoming || m.Status == MeetingStatusFinished {
		m.Status = MeetingStatusActive
	}
}

// Activate flips an upcoming meeting to active once its scheduled time has passed.
func (m *Meeting) Activate(now time.Time) bool {
	if m.Status != MeetingStatusUpcoming || m.UpcomingDate.After(now) {
		return false
	}
	m.Status = MeetingStatusActive
	return true
}

// MarkJoined refreshes or appends the durable presence entry for userID.
func (m *Meeting) MarkJoined(userID uuid.UUID, now time.Time) {
	for i := range m.ActiveParticipants {
		if m.ActiveParticipants[i].ParticipantID == userID {
			m.ActiveParticipants[i].LastSeen = now
			return
		}
	}
	m.ActiveParticipants = append(m.ActiveParticipants, ActiveParticipant{
		ParticipantID: userID,
		JoinedAt:      now,
		LastSeen:      now,
	})
}

// MarkLeft removes the durable presence entry for userID.
func (m *Meeting) MarkLeft(userID uuid.UUID) {
	out := m.ActiveParticipants[:0]
	for _, p := range m.ActiveParticipants {
		if p.ParticipantID != userID {
			out = append(out, p)
		}
	}
	m.ActiveParticipants = out
}
