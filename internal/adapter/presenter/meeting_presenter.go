package presenter

import (
	"github.com/google/uuid"

	meetingDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meetingDTO.MeetingResponse {
	if m == nil {
		return nil
	}
	participants := make([]uuid.UUID, len(m.ParticipantIDs))
	copy(participants, m.ParticipantIDs)

	return &meetingDTO.MeetingResponse{
		ID:             m.ID,
		Title:          m.Title,
		Question:       m.Question,
		CreatorID:      m.CreatorID,
		ParticipantIDs: participants,
		CurrentPhase:   string(m.CurrentPhase),
		Status:         string(m.Status),
		UpcomingDate:   m.UpcomingDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ToListMeetingsResponse converts meetings to the list response
func ToListMeetingsResponse(meetings []*entities.Meeting) *meetingDTO.ListMeetingsResponse {
	out := make([]*meetingDTO.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, ToMeetingResponse(m))
	}
	return &meetingDTO.ListMeetingsResponse{Meetings: out, Total: len(out)}
}

// ToEmotionalRatings maps request items to ledger ratings
func ToEmotionalRatings(items []meetingDTO.EmotionalRatingRequest) []entities.EmotionalRating {
	out := make([]entities.EmotionalRating, 0, len(items))
	for _, it := range items {
		out = append(out, entities.EmotionalRating{
			TargetParticipantID: it.TargetParticipantID,
			EmotionalScale:      deref(it.EmotionalScale),
			IsToxic:             it.IsToxic,
		})
	}
	return out
}

// ToContributionShares maps request items to ledger contributions
func ToContributionShares(items []meetingDTO.ContributionRequest) []entities.ContributionShare {
	out := make([]entities.ContributionShare, 0, len(items))
	for _, it := range items {
		out = append(out, entities.ContributionShare{
			ParticipantID:          it.ParticipantID,
			ContributionPercentage: deref(it.ContributionPercentage),
		})
	}
	return out
}

// ToTaskImportances maps request items to ledger task scores
func ToTaskImportances(items []meetingDTO.TaskImportanceRequest) []entities.TaskImportance {
	out := make([]entities.TaskImportance, 0, len(items))
	for _, it := range items {
		out = append(out, entities.TaskImportance{
			TaskAuthorID:    it.TaskAuthorID,
			ImportanceScore: deref(it.ImportanceScore),
		})
	}
	return out
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
