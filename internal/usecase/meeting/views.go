package meeting

import (
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// ParticipantRef carries the display fields of a user next to its id. Name and email are
// empty when the user no longer exists.
type ParticipantRef struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// LiveParticipant is a roster entry of the presence tracker
type LiveParticipant struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
	LastSeen time.Time `json:"lastSeen"`
}

// ActiveParticipant is a live roster entry as shown to participants
type ActiveParticipant struct {
	LiveParticipant
	IsActive bool `json:"isActive"`
}

type EmotionalRatingView struct {
	Target         ParticipantRef `json:"targetParticipant"`
	EmotionalScale float64        `json:"emotionalScale"`
	IsToxic        bool           `json:"isToxic"`
}

type EmotionalEvaluationView struct {
	Participant ParticipantRef        `json:"participant"`
	Evaluations []EmotionalRatingView `json:"evaluations"`
	SubmittedAt time.Time             `json:"submittedAt"`
}

type ContributionView struct {
	Participant            ParticipantRef `json:"participant"`
	ContributionPercentage float64        `json:"contributionPercentage"`
}

type UnderstandingContributionView struct {
	Participant        ParticipantRef     `json:"participant"`
	UnderstandingScore float64            `json:"understandingScore"`
	Contributions      []ContributionView `json:"contributions"`
	SubmittedAt        time.Time          `json:"submittedAt"`
}

// TaskPlanningView joins a task plan with the approval state of its companion task
type TaskPlanningView struct {
	Participant                    ParticipantRef `json:"participant"`
	TaskID                         *uuid.UUID     `json:"taskId"`
	Approved                       bool           `json:"approved"`
	TaskDescription                string         `json:"taskDescription"`
	CommonQuestion                 string         `json:"commonQuestion"`
	Deadline                       time.Time      `json:"deadline"`
	ExpectedContributionPercentage float64        `json:"expectedContributionPercentage"`
	SubmittedAt                    time.Time      `json:"submittedAt"`
}

type TaskImportanceView struct {
	TaskAuthor      ParticipantRef `json:"taskAuthor"`
	ImportanceScore float64        `json:"importanceScore"`
}

type TaskEvaluationView struct {
	Participant ParticipantRef       `json:"participant"`
	Evaluations []TaskImportanceView `json:"evaluations"`
	SubmittedAt time.Time            `json:"submittedAt"`
}

// MeetingDetail is a meeting with every ledger enriched for display
type MeetingDetail struct {
	ID                         uuid.UUID                       `json:"id"`
	Title                      string                          `json:"title"`
	Question                   string                          `json:"question"`
	Creator                    ParticipantRef                  `json:"creator"`
	Participants               []ParticipantRef                `json:"participants"`
	CurrentPhase               entities.MeetingPhase           `json:"currentPhase"`
	Status                     entities.MeetingStatus          `json:"status"`
	UpcomingDate               time.Time                       `json:"upcomingDate"`
	EmotionalEvaluations       []EmotionalEvaluationView       `json:"emotionalEvaluations"`
	UnderstandingContributions []UnderstandingContributionView `json:"understandingContributions"`
	TaskPlannings              []TaskPlanningView              `json:"taskPlannings"`
	TaskEvaluations            []TaskEvaluationView            `json:"taskEvaluations"`
	ActiveParticipants         []entities.ActiveParticipant    `json:"activeParticipants"`
	CreatedAt                  time.Time                       `json:"createdAt"`
	UpdatedAt                  time.Time                       `json:"updatedAt"`
}

type ActiveParticipants struct {
	MeetingID          uuid.UUID           `json:"meetingId"`
	ActiveParticipants []ActiveParticipant `json:"activeParticipants"`
	TotalParticipants  int                 `json:"totalParticipants"`
	ActiveCount        int                 `json:"activeCount"`
	Source             string              `json:"source"`
}

type SubmissionStatus struct {
	Phase     entities.MeetingPhase `json:"phase"`
	Submitted []uuid.UUID           `json:"submitted"`
}

type VotingProgress struct {
	Submitted  int `json:"submitted"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type VotingInfo struct {
	MeetingID               uuid.UUID             `json:"meetingId"`
	CurrentPhase            entities.MeetingPhase `json:"currentPhase"`
	VotingParticipants      []LiveParticipant     `json:"votingParticipants"`
	TotalVotingParticipants int                   `json:"totalVotingParticipants"`
	SubmissionStatus        SubmissionStatus      `json:"submissionStatus"`
	VotingProgress          VotingProgress        `json:"votingProgress"`
}

type PendingVoters struct {
	MeetingID           uuid.UUID             `json:"meetingId"`
	Phase               entities.MeetingPhase `json:"phase"`
	PendingCount        int                   `json:"pendingCount"`
	PendingParticipants []LiveParticipant     `json:"pendingParticipants"`
}

// SubmissionEntry is one participant's slot in a ledger. Data is the enriched submission
// when Submitted is true.
type SubmissionEntry struct {
	Participant ParticipantRef `json:"participant"`
	Submitted   bool           `json:"submitted"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
	Data        any            `json:"data,omitempty"`
}

type AllSubmissions struct {
	MeetingID   uuid.UUID                                               `json:"meetingId"`
	Submissions map[entities.MeetingPhase]map[uuid.UUID]SubmissionEntry `json:"submissions"`
}

type PhaseSubmissions struct {
	MeetingID                  uuid.UUID                       `json:"meetingId"`
	Title                      string                          `json:"title"`
	Question                   string                          `json:"question"`
	CurrentPhase               entities.MeetingPhase           `json:"currentPhase"`
	Status                     entities.MeetingStatus          `json:"status"`
	Participants               []ParticipantRef                `json:"participants"`
	EmotionalEvaluations       []EmotionalEvaluationView       `json:"emotionalEvaluations"`
	UnderstandingContributions []UnderstandingContributionView `json:"understandingContributions"`
	TaskPlannings              []TaskPlanningView              `json:"taskPlannings"`
	TaskEvaluations            []TaskEvaluationView            `json:"taskEvaluations"`
}

type ParticipantStatistic struct {
	Participant           ParticipantRef `json:"participant"`
	UnderstandingScore    float64        `json:"understandingScore"`
	AverageEmotionalScale float64        `json:"averageEmotionalScale"`
	ToxicityFlags         int            `json:"toxicityFlags"`
	AverageContribution   float64        `json:"averageContribution"`
}

type Statistics struct {
	MeetingID        uuid.UUID              `json:"meetingId"`
	Question         string                 `json:"question"`
	AvgUnderstanding float64                `json:"avgUnderstanding"`
	ParticipantStats []ParticipantStatistic `json:"participantStats"`
}

// ScoreStats summarises the importance scores a task received
type ScoreStats struct {
	Count   int       `json:"count"`
	Average float64   `json:"average"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Median  float64   `json:"median"`
	Scores  []float64 `json:"scores"`
}

type TaskAnalytic struct {
	TaskAuthor                     ParticipantRef `json:"taskAuthor"`
	TaskID                         *uuid.UUID     `json:"taskId"`
	TaskDescription                string         `json:"taskDescription"`
	CommonQuestion                 string         `json:"commonQuestion"`
	Deadline                       time.Time      `json:"deadline"`
	OriginalContributionPercentage float64        `json:"originalContributionPercentage"`
	EvaluationStats                ScoreStats     `json:"evaluationStats"`
	EvaluationDifference           float64        `json:"evaluationDifference"`
}

type TaskEvaluationAnalytics struct {
	MeetingID         uuid.UUID      `json:"meetingId"`
	MeetingTitle      string         `json:"meetingTitle"`
	Message           string         `json:"message,omitempty"`
	TotalTasks        int            `json:"totalTasks"`
	TotalEvaluators   int            `json:"totalEvaluators"`
	TotalParticipants int            `json:"totalParticipants"`
	TaskAnalytics     []TaskAnalytic `json:"taskAnalytics"`
}

type ReceivedRating struct {
	From           ParticipantRef `json:"fromParticipant"`
	EmotionalScale float64        `json:"emotionalScale"`
	IsToxic        bool           `json:"isToxic"`
}

type ReceivedContribution struct {
	From                   ParticipantRef `json:"fromParticipant"`
	ContributionPercentage float64        `json:"contributionPercentage"`
}

type ReceivedImportance struct {
	From            ParticipantRef `json:"fromParticipant"`
	ImportanceScore float64        `json:"importanceScore"`
}

type UnderstandingGiven struct {
	UnderstandingScore float64            `json:"understandingScore"`
	Contributions      []ContributionView `json:"contributions"`
	SubmittedAt        time.Time          `json:"submittedAt"`
}

type TaskCreated struct {
	TaskID                  *uuid.UUID `json:"taskId"`
	Approved                bool       `json:"approved"`
	TaskDescription         string     `json:"taskDescription"`
	CommonQuestion          string     `json:"commonQuestion"`
	Deadline                time.Time  `json:"deadline"`
	OwnContributionEstimate float64    `json:"ownContributionEstimate"`
	SubmittedAt             time.Time  `json:"submittedAt"`
}

type EmotionalBreakdown struct {
	Given    []EmotionalRatingView `json:"given"`
	Received []ReceivedRating      `json:"received"`
}

type UnderstandingBreakdown struct {
	Given    *UnderstandingGiven    `json:"given"`
	Received []ReceivedContribution `json:"received"`
}

type TaskBreakdown struct {
	TaskCreated         *TaskCreated         `json:"taskCreated"`
	EvaluationsGiven    []TaskImportanceView `json:"evaluationsGiven"`
	EvaluationsReceived []ReceivedImportance `json:"evaluationsReceived"`
}

// ParticipantBreakdown is everything one participant gave and received in a meeting
type ParticipantBreakdown struct {
	Participant                  ParticipantRef         `json:"participant"`
	EmotionalEvaluations         EmotionalBreakdown     `json:"emotionalEvaluations"`
	UnderstandingAndContribution UnderstandingBreakdown `json:"understandingAndContribution"`
	TaskPlanning                 TaskBreakdown          `json:"taskPlanning"`
}

type FinalStatistics struct {
	MeetingID             uuid.UUID              `json:"meetingId"`
	MeetingTitle          string                 `json:"meetingTitle"`
	MeetingQuestion       string                 `json:"meetingQuestion"`
	CurrentPhase          entities.MeetingPhase  `json:"currentPhase"`
	Status                entities.MeetingStatus `json:"status"`
	Creator               ParticipantRef         `json:"creator"`
	TotalParticipants     int                    `json:"totalParticipants"`
	ParticipantStatistics []ParticipantBreakdown `json:"participantStatistics"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}
