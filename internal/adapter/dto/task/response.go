package task

import (
	"time"

	"github.com/google/uuid"
)

// TaskResponse represents a task
type TaskResponse struct {
	ID                     uuid.UUID `json:"id"`
	Description            string    `json:"description"`
	CommonQuestion         string    `json:"commonQuestion"`
	AuthorID               uuid.UUID `json:"authorId"`
	MeetingID              uuid.UUID `json:"meetingId"`
	Deadline               time.Time `json:"deadline"`
	ContributionImportance float64   `json:"contributionImportance"`
	IsCompleted            bool      `json:"isCompleted"`
	Approved               bool      `json:"approved"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// ListTasksResponse represents a list of tasks
type ListTasksResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
	Total int             `json:"total"`
}

// ApprovalResponse is returned by PATCH /tasks/:id/approve
type ApprovalResponse struct {
	TaskID   uuid.UUID     `json:"taskId"`
	Approved bool          `json:"approved"`
	Task     *TaskResponse `json:"task"`
}
