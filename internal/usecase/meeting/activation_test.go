package meeting

import (
	"context"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

type countingObserver struct {
	runs      int
	activated int
}

func (o *countingObserver) SweepCompleted(activated int, _ time.Duration, _ error) {
	o.runs++
	o.activated += activated
}

func TestActivationSweeperRunOnce(t *testing.T) {
	f := newFixture(PolicyPermissive)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	due := entities.NewMeeting("due", "q", f.creator.ID, nil, &future, time.Now().Add(-2*time.Hour))
	due.UpcomingDate = past
	later := entities.NewMeeting("later", "q", f.creator.ID, nil, &future, time.Now())
	_ = f.meetings.Create(ctx, due)
	_ = f.meetings.Create(ctx, later)

	locker := &fakeLocker{}
	observer := &countingObserver{}
	sweeper := NewActivationSweeper(f.meetings, f.notifier, locker, observer, SweeperConfig{Interval: time.Minute}, nil)

	ids, err := sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != due.ID {
		t.Fatalf("expected only the due meeting, got %v", ids)
	}
	if locker.released != 1 {
		t.Errorf("expected lock to be released once, got %d", locker.released)
	}
	if observer.runs != 1 || observer.activated != 1 {
		t.Errorf("unexpected observer state %+v", observer)
	}

	stored, _ := f.meetings.FindByID(ctx, due.ID)
	if stored.Status != entities.MeetingStatusActive {
		t.Errorf("expected active, got %s", stored.Status)
	}
	untouched, _ := f.meetings.FindByID(ctx, later.ID)
	if untouched.Status != entities.MeetingStatusUpcoming {
		t.Errorf("expected upcoming, got %s", untouched.Status)
	}

	if len(f.notifier.phases) != 1 {
		t.Fatalf("expected 1 phase event, got %d", len(f.notifier.phases))
	}
	if ev := f.notifier.phases[0]; ev.MeetingID != due.ID || ev.Status != entities.MeetingStatusActive {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestActivationSweeperSkipsWhenLocked(t *testing.T) {
	f := newFixture(PolicyPermissive)
	sweeper := NewActivationSweeper(f.meetings, f.notifier, &fakeLocker{held: true}, nil, SweeperConfig{}, nil)

	ids, err := sweeper.RunOnce(context.Background())
	if err != nil || ids != nil {
		t.Errorf("expected a skipped sweep, got %v %v", ids, err)
	}
}

func TestActivationSweeperStartStop(t *testing.T) {
	f := newFixture(PolicyPermissive)
	sweeper := NewActivationSweeper(f.meetings, nil, &fakeLocker{}, nil, SweeperConfig{Interval: 10 * time.Millisecond}, nil)

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sweeper.Start(context.Background()); err == nil {
		t.Error("expected error on double start")
	}
	time.Sleep(30 * time.Millisecond)
	if err := sweeper.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sweeper.Stop(); err == nil {
		t.Error("expected error on double stop")
	}
}
