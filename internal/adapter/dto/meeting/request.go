package meeting

import (
	"time"

	"github.com/google/uuid"
)

// CreateMeetingRequest represents the request body for creating a meeting
type CreateMeetingRequest struct {
	Title          string      `json:"title" validate:"required,max=255" example:"Sprint 12 retrospective"`
	Question       string      `json:"question" validate:"required" example:"What slowed us down this sprint?"`
	ParticipantIDs []uuid.UUID `json:"participantIds" validate:"omitempty,dive,required"`
	UpcomingDate   *time.Time  `json:"upcomingDate,omitempty" example:"2025-03-01T09:00:00Z"`
}

// UpdateMeetingRequest represents a partial meeting update. Absent fields are left unchanged.
type UpdateMeetingRequest struct {
	Title          *string      `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Question       *string      `json:"question,omitempty" validate:"omitempty,min=1"`
	ParticipantIDs *[]uuid.UUID `json:"participantIds,omitempty" validate:"omitempty,dive,required"`
	UpcomingDate   *time.Time   `json:"upcomingDate,omitempty"`
}

// ChangePhaseRequest represents the request body for PATCH /meetings/:id/phase
type ChangePhaseRequest struct {
	Phase string `json:"phase" validate:"required,oneof=emotional_evaluation understanding_contribution task_planning task_evaluation finished" example:"task_planning"`
}

// EmotionalRatingRequest rates one other participant
type EmotionalRatingRequest struct {
	TargetParticipantID uuid.UUID `json:"targetParticipantId" validate:"required"`
	EmotionalScale      *float64  `json:"emotionalScale" validate:"required,min=-100,max=100" example:"80"`
	IsToxic             bool      `json:"isToxic"`
}

// EmotionalEvaluationRequest represents an emotional evaluation submission
type EmotionalEvaluationRequest struct {
	Evaluations []EmotionalRatingRequest `json:"evaluations" validate:"required,dive"`
}

// ContributionRequest attributes a share of the work to a participant
type ContributionRequest struct {
	ParticipantID          uuid.UUID `json:"participantId" validate:"required"`
	ContributionPercentage *float64  `json:"contributionPercentage" validate:"required,min=0,max=100" example:"40"`
}

// UnderstandingContributionRequest represents an understanding/contribution submission
type UnderstandingContributionRequest struct {
	UnderstandingScore *float64              `json:"understandingScore" validate:"required,min=0,max=100" example:"75"`
	Contributions      []ContributionRequest `json:"contributions" validate:"required,dive"`
}

// TaskPlanningRequest represents a task planning submission
type TaskPlanningRequest struct {
	TaskDescription                string    `json:"taskDescription" validate:"required" example:"Implement user authentication"`
	CommonQuestion                 string    `json:"commonQuestion" validate:"required" example:"Which identity provider do we use?"`
	Deadline                       time.Time `json:"deadline" validate:"required" example:"2026-02-01T00:00:00Z"`
	ExpectedContributionPercentage *float64  `json:"expectedContributionPercentage" validate:"required,min=0,max=100" example:"90"`
}

// TaskImportanceRequest scores one participant's task
type TaskImportanceRequest struct {
	TaskAuthorID    uuid.UUID `json:"taskAuthorId" validate:"required"`
	ImportanceScore *float64  `json:"importanceScore" validate:"required,min=0,max=100" example:"60"`
}

// TaskEvaluationRequest represents a task evaluation submission
type TaskEvaluationRequest struct {
	TaskEvaluations []TaskImportanceRequest `json:"taskEvaluations" validate:"required,dive"`
}
