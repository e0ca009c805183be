package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewMeeting(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	creator := uuid.New()
	other := uuid.New()

	t.Run("creator added and active without date", func(t *testing.T) {
		m := NewMeeting("Retro", "How did it go?", creator, []uuid.UUID{other, other}, nil, now)
		if len(m.ParticipantIDs) != 2 {
			t.Fatalf("participants = %v, want other + creator", m.ParticipantIDs)
		}
		if !m.IsParticipant(creator) {
			t.Error("creator must be a participant")
		}
		if m.Status != MeetingStatusActive {
			t.Errorf("status = %s, want active", m.Status)
		}
		if m.CurrentPhase != PhaseEmotionalEvaluation {
			t.Errorf("phase = %s, want emotional_evaluation", m.CurrentPhase)
		}
		if !m.UpcomingDate.Equal(now) {
			t.Errorf("upcomingDate = %v, want %v", m.UpcomingDate, now)
		}
	})

	t.Run("future date is upcoming", func(t *testing.T) {
		later := now.Add(time.Hour)
		m := NewMeeting("Retro", "q", creator, nil, &later, now)
		if m.Status != MeetingStatusUpcoming {
			t.Errorf("status = %s, want upcoming", m.Status)
		}
	})

	t.Run("past date is active", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		m := NewMeeting("Retro", "q", creator, nil, &earlier, now)
		if m.Status != MeetingStatusActive {
			t.Errorf("status = %s, want active", m.Status)
		}
	})
}

func TestChangePhase(t *testing.T) {
	tests := []struct {
		name       string
		from       MeetingStatus
		phase      MeetingPhase
		wantStatus MeetingStatus
	}{
		{"finish from active", MeetingStatusActive, PhaseFinished, MeetingStatusFinished},
		{"finish from upcoming", MeetingStatusUpcoming, PhaseFinished, MeetingStatusFinished},
		{"advance upcoming", MeetingStatusUpcoming, PhaseTaskPlanning, MeetingStatusActive},
		{"advance active", MeetingStatusActive, PhaseUnderstandingContribution, MeetingStatusActive},
		{"reopen finished", MeetingStatusFinished, PhaseEmotionalEvaluation, MeetingStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Meeting{Status: tt.from, CurrentPhase: PhaseEmotionalEvaluation}
			m.ChangePhase(tt.phase)
			if m.CurrentPhase != tt.phase {
				t.Errorf("phase = %s, want %s", m.CurrentPhase, tt.phase)
			}
			if m.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", m.Status, tt.wantStatus)
			}
			if (m.Status == MeetingStatusFinished) != (m.CurrentPhase == PhaseFinished) {
				t.Errorf("status %s inconsistent with phase %s", m.Status, m.CurrentPhase)
			}
		})
	}
}

func TestActivate(t *testing.T) {
	now := time.Now()
	m := &Meeting{Status: MeetingStatusUpcoming, UpcomingDate: now.Add(time.Minute)}
	if m.Activate(now) {
		t.Fatal("should not activate before upcomingDate")
	}
	if !m.Activate(now.Add(2 * time.Minute)) {
		t.Fatal("should activate after upcomingDate")
	}
	if m.Status != MeetingStatusActive {
		t.Errorf("status = %s, want active", m.Status)
	}
	if m.Activate(now.Add(3 * time.Minute)) {
		t.Error("an active meeting must not activate twice")
	}
}

func TestResubmissionReplaces(t *testing.T) {
	m := NewMeeting("t", "q", uuid.New(), nil, nil, time.Now())
	alice, bob := uuid.New(), uuid.New()

	m.SubmitEmotionalEvaluation(EmotionalEvaluation{ParticipantID: alice, Evaluations: []EmotionalRating{{TargetParticipantID: bob, EmotionalScale: 10}}})
	m.SubmitEmotionalEvaluation(EmotionalEvaluation{ParticipantID: bob})
	m.SubmitEmotionalEvaluation(EmotionalEvaluation{ParticipantID: alice, Evaluations: []EmotionalRating{{TargetParticipantID: bob, EmotionalScale: 80}}})

	if len(m.EmotionalEvaluations) != 2 {
		t.Fatalf("ledger size = %d, want 2", len(m.EmotionalEvaluations))
	}
	got, ok := m.EmotionalEvaluationBy(alice)
	if !ok || got.Evaluations[0].EmotionalScale != 80 {
		t.Fatalf("alice entry = %+v, want latest submission", got)
	}

	m.SubmitUnderstandingContribution(UnderstandingContribution{ParticipantID: alice, UnderstandingScore: 10})
	m.SubmitUnderstandingContribution(UnderstandingContribution{ParticipantID: alice, UnderstandingScore: 90})
	if len(m.UnderstandingContributions) != 1 || m.UnderstandingContributions[0].UnderstandingScore != 90 {
		t.Fatalf("understanding ledger = %+v", m.UnderstandingContributions)
	}
}

func TestSubmitTaskEvaluationAllOrNothing(t *testing.T) {
	m := NewMeeting("t", "q", uuid.New(), nil, nil, time.Now())
	author, evaluator, stranger := uuid.New(), uuid.New(), uuid.New()
	m.SubmitTaskPlanning(TaskPlanning{ParticipantID: author, TaskDescription: "write docs"})

	err := m.SubmitTaskEvaluation(TaskEvaluation{
		ParticipantID: evaluator,
		TaskEvaluations: []TaskImportance{
			{TaskAuthorID: author, ImportanceScore: 50},
			{TaskAuthorID: stranger, ImportanceScore: 70},
		},
	})
	var unknown *UnknownTaskAuthorError
	if !errors.As(err, &unknown) || unknown.AuthorID != stranger {
		t.Fatalf("err = %v, want UnknownTaskAuthorError for %s", err, stranger)
	}
	if len(m.TaskEvaluations) != 0 {
		t.Fatalf("ledger written despite rejection: %+v", m.TaskEvaluations)
	}

	if err := m.SubmitTaskEvaluation(TaskEvaluation{
		ParticipantID:   evaluator,
		TaskEvaluations: []TaskImportance{{TaskAuthorID: author, ImportanceScore: 50}},
	}); err != nil {
		t.Fatalf("valid evaluation rejected: %v", err)
	}
	if len(m.TaskEvaluations) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(m.TaskEvaluations))
	}
}

func TestSubmittedIDs(t *testing.T) {
	m := NewMeeting("t", "q", uuid.New(), nil, nil, time.Now())
	a := uuid.New()
	m.SubmitTaskPlanning(TaskPlanning{ParticipantID: a})

	if ids := m.SubmittedIDs(PhaseTaskPlanning); len(ids) != 1 || ids[0] != a {
		t.Errorf("task planning ids = %v", ids)
	}
	if ids := m.SubmittedIDs(PhaseFinished); ids == nil || len(ids) != 0 {
		t.Errorf("finished ids = %v, want empty non-nil", ids)
	}
}

func TestDurablePresence(t *testing.T) {
	m := NewMeeting("t", "q", uuid.New(), nil, nil, time.Now())
	u := uuid.New()
	t0 := time.Now()

	m.MarkJoined(u, t0)
	m.MarkJoined(u, t0.Add(time.Minute))
	if len(m.ActiveParticipants) != 1 {
		t.Fatalf("active = %d, want 1", len(m.ActiveParticipants))
	}
	if !m.ActiveParticipants[0].JoinedAt.Equal(t0) || !m.ActiveParticipants[0].LastSeen.Equal(t0.Add(time.Minute)) {
		t.Errorf("unexpected entry %+v", m.ActiveParticipants[0])
	}

	m.MarkLeft(u)
	if len(m.ActiveParticipants) != 0 {
		t.Errorf("active = %d after leave, want 0", len(m.ActiveParticipants))
	}
}
