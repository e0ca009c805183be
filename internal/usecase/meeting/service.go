package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// Service defines the interface for meeting use case
type Service interface {
	// CreateMeeting creates a meeting owned by the caller
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error)

	// GetMeeting returns a meeting with its ledgers enriched for display
	GetMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*MeetingDetail, error)

	// ListMeetings lists the caller's meetings filtered by current|past|upcoming
	ListMeetings(ctx context.Context, userID uuid.UUID, filter string) ([]*entities.Meeting, error)

	// UpdateMeeting patches title, question, participants or schedule (creator only)
	UpdateMeeting(ctx context.Context, input UpdateMeetingInput) (*entities.Meeting, error)

	// DeleteMeeting hard deletes a meeting (creator only)
	DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error

	// ChangePhase moves the meeting to any phase (creator only)
	ChangePhase(ctx context.Context, meetingID, userID uuid.UUID, phase entities.MeetingPhase) (*entities.Meeting, error)

	// JoinMeeting records durable presence.
	// Deprecated: live presence comes from the realtime channel.
	JoinMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error)

	// LeaveMeeting removes durable presence.
	// Deprecated: live presence comes from the realtime channel.
	LeaveMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error)

	// SubmitEmotionalEvaluation stores the caller's emotional evaluation
	SubmitEmotionalEvaluation(ctx context.Context, input EmotionalEvaluationInput) (*SubmissionReceipt, error)

	// SubmitUnderstandingContribution stores the caller's understanding and contribution scores
	SubmitUnderstandingContribution(ctx context.Context, input UnderstandingContributionInput) (*SubmissionReceipt, error)

	// SubmitTaskPlanning stores the caller's task plan and upserts the companion task
	SubmitTaskPlanning(ctx context.Context, input TaskPlanningInput) (*SubmissionReceipt, error)

	// SubmitTaskEvaluation stores the caller's task importance scores
	SubmitTaskEvaluation(ctx context.Context, input TaskEvaluationInput) (*SubmissionReceipt, error)

	// GetActiveParticipants returns the live roster (participants)
	GetActiveParticipants(ctx context.Context, meetingID, userID uuid.UUID) (*ActiveParticipants, error)

	// GetVotingInfo returns voting progress for the current phase (creator only)
	GetVotingInfo(ctx context.Context, meetingID, userID uuid.UUID) (*VotingInfo, error)

	// GetPendingVoters returns live participants who have not submitted yet (creator only)
	GetPendingVoters(ctx context.Context, meetingID, userID uuid.UUID) (*PendingVoters, error)

	// GetAllSubmissions returns every ledger keyed by participant (creator only)
	GetAllSubmissions(ctx context.Context, meetingID, userID uuid.UUID) (*AllSubmissions, error)

	// GetPhaseSubmissions returns every ledger as lists (creator only)
	GetPhaseSubmissions(ctx context.Context, meetingID, userID uuid.UUID) (*PhaseSubmissions, error)

	// GetStatistics returns per participant statistics of a finished meeting (creator only)
	GetStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*Statistics, error)

	// GetTaskEvaluationAnalytics returns score statistics per planned task (creator only)
	GetTaskEvaluationAnalytics(ctx context.Context, meetingID, userID uuid.UUID) (*TaskEvaluationAnalytics, error)

	// GetFinalStatistics returns the full given/received breakdown (creator only)
	GetFinalStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*FinalStatistics, error)

	// ExportFinalStatistics archives the final statistics and returns a download link (creator only)
	ExportFinalStatistics(ctx context.Context, meetingID, userID uuid.UUID) (*ArchivedReport, error)
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)

// Notifier pushes meeting events to realtime subscribers. Calls are fire-and-forget.
type Notifier interface {
	PhaseChanged(meetingID uuid.UUID, phase entities.MeetingPhase, status entities.MeetingStatus)
	MeetingUpdated(meetingID uuid.UUID, eventType string, userID uuid.UUID)
}

// PresenceReader exposes the live roster of a meeting
type PresenceReader interface {
	List(meetingID uuid.UUID) []entities.PresenceRecord
}

// ReportArchiver stores exported reports
type ReportArchiver interface {
	Archive(ctx context.Context, objectKey string, payload []byte) (*ArchivedReport, error)
}

// ArchivedReport locates an exported report
type ArchivedReport struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SubmissionPolicy decides which submissions the ledger accepts
type SubmissionPolicy string

const (
	// PolicyPermissive accepts any submission at any time and from anyone, including the creator
	PolicyPermissive SubmissionPolicy = "permissive"
	// PolicyStrict only accepts submissions for the current phase and bars the creator
	PolicyStrict SubmissionPolicy = "strict"
)

// Meeting update event types
const (
	EventMeetingUpdated                   = "meeting_updated"
	EventEmotionalEvaluationUpdated       = "emotional_evaluation_updated"
	EventUnderstandingContributionUpdated = "understanding_contribution_updated"
	EventTaskPlanningUpdated              = "task_planning_updated"
	EventTaskEvaluationUpdated            = "task_evaluation_updated"
	EventTaskUpdated                      = "task_updated"
	EventTaskApproved                     = "task_approved"
)

// List filters
const (
	FilterCurrent  = "current"
	FilterPast     = "past"
	FilterUpcoming = "upcoming"
)

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	Title          string
	Question       string
	ParticipantIDs []uuid.UUID
	UpcomingDate   *time.Time
	CreatorID      uuid.UUID
}

// UpdateMeetingInput represents a partial meeting update
type UpdateMeetingInput struct {
	MeetingID      uuid.UUID
	UserID         uuid.UUID
	Title          *string
	Question       *string
	ParticipantIDs *[]uuid.UUID
	UpcomingDate   *time.Time
}

// EmotionalEvaluationInput represents an emotional evaluation submission
type EmotionalEvaluationInput struct {
	MeetingID   uuid.UUID
	UserID      uuid.UUID
	Evaluations []entities.EmotionalRating
}

// UnderstandingContributionInput represents an understanding/contribution submission
type UnderstandingContributionInput struct {
	MeetingID          uuid.UUID
	UserID             uuid.UUID
	UnderstandingScore float64
	Contributions      []entities.ContributionShare
}

// TaskPlanningInput represents a task planning submission
type TaskPlanningInput struct {
	MeetingID                      uuid.UUID
	UserID                         uuid.UUID
	TaskDescription                string
	CommonQuestion                 string
	Deadline                       time.Time
	ExpectedContributionPercentage float64
}

// TaskEvaluationInput represents a task evaluation submission
type TaskEvaluationInput struct {
	MeetingID       uuid.UUID
	UserID          uuid.UUID
	TaskEvaluations []entities.TaskImportance
}

// SubmissionReceipt acknowledges a stored submission
type SubmissionReceipt struct {
	MeetingID     uuid.UUID             `json:"meetingId"`
	Phase         entities.MeetingPhase `json:"phase"`
	ParticipantID uuid.UUID             `json:"participantId"`
	SubmittedAt   time.Time             `json:"submittedAt"`
	TaskID        *uuid.UUID            `json:"taskId,omitempty"`
}
