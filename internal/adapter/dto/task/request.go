package task

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	MeetingID              uuid.UUID `json:"meetingId" validate:"required"`
	Description            string    `json:"description" validate:"required" example:"Write the migration plan"`
	CommonQuestion         string    `json:"commonQuestion"`
	Deadline               time.Time `json:"deadline" validate:"required" example:"2026-02-01T00:00:00Z"`
	ContributionImportance *float64  `json:"contributionImportance" validate:"required,min=0,max=100" example:"50"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Description            *string    `json:"description,omitempty" validate:"omitempty,min=1"`
	Deadline               *time.Time `json:"deadline,omitempty"`
	ContributionImportance *float64   `json:"contributionImportance,omitempty" validate:"omitempty,min=0,max=100"`
	IsCompleted            *bool      `json:"isCompleted,omitempty"`
}

// ApproveTaskRequest represents the request body for PATCH /tasks/:id/approve
type ApproveTaskRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}
