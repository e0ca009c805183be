package meeting

import (
	"time"

	"github.com/google/uuid"
)

// MeetingResponse represents a meeting without its ledgers
type MeetingResponse struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Question       string      `json:"question"`
	CreatorID      uuid.UUID   `json:"creatorId"`
	ParticipantIDs []uuid.UUID `json:"participantIds"`
	CurrentPhase   string      `json:"currentPhase"`
	Status         string      `json:"status"`
	UpcomingDate   time.Time   `json:"upcomingDate"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// ListMeetingsResponse represents the list of meetings
type ListMeetingsResponse struct {
	Meetings []*MeetingResponse `json:"meetings"`
	Total    int                `json:"total"`
}
