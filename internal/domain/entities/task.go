package entities

import (
	"time"

	"github.com/google/uuid"
)

// Task is the follow-up item a participant commits to during task planning.
// There is at most one task per (meeting, author).
type Task struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Description            string    `gorm:"type:text;not null" json:"description"`
	CommonQuestion         string    `gorm:"type:text;not null;default:''" json:"commonQuestion"`
	AuthorID               uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tasks_meeting_author,priority:2" json:"authorId"`
	Author                 *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	MeetingID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tasks_meeting_author,priority:1" json:"meetingId"`
	Deadline               time.Time `gorm:"not null;index" json:"deadline"`
	ContributionImportance float64   `gorm:"not null;default:0" json:"contributionImportance"`
	IsCompleted            bool      `gorm:"not null;default:false" json:"isCompleted"`
	Approved               bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// IsAuthor reports whether userID wrote the task
func (t *Task) IsAuthor(userID uuid.UUID) bool {
	return t.AuthorID == userID
}

// ApplyPlanning copies a task planning submission onto the task.
func (t *Task) ApplyPlanning(p TaskPlanning) {
	t.Description = p.TaskDescription
	t.CommonQuestion = p.CommonQuestion
	t.Deadline = p.Deadline
	t.ContributionImportance = p.ExpectedContributionPercentage
}
