package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

type published struct {
	meetingID uuid.UUID
	event     string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	frames []published
}

func (p *recordingPublisher) Publish(meetingID uuid.UUID, event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, published{meetingID: meetingID, event: event, data: data})
}

type fakeBus struct {
	mu      sync.Mutex
	err     error
	release chan struct{}
	events  []Event
}

func (b *fakeBus) Publish(ctx context.Context, ev Event) error {
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *fakeBus) published() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func runNotifier(t *testing.T, n *Notifier) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go n.Run(ctx)
}

func TestNotifier_DeliversLocallyWithoutBus(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, nil, nil)
	meetingID, userID := uuid.New(), uuid.New()

	n.PhaseChanged(meetingID, entities.PhaseFinished, entities.MeetingStatusFinished)
	n.MeetingUpdated(meetingID, "task_approved", userID)

	if len(pub.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(pub.frames))
	}
	phase, ok := pub.frames[0].data.(PhaseChanged)
	if !ok || pub.frames[0].event != EventPhaseChanged {
		t.Fatalf("first frame = %+v", pub.frames[0])
	}
	if phase.Phase != entities.PhaseFinished || phase.Status != entities.MeetingStatusFinished {
		t.Errorf("phase payload = %+v", phase)
	}
	updated, ok := pub.frames[1].data.(MeetingUpdated)
	if !ok || pub.frames[1].event != EventMeetingUpdated {
		t.Fatalf("second frame = %+v", pub.frames[1])
	}
	if updated.Type != "task_approved" || updated.UserID != userID || updated.Timestamp.IsZero() {
		t.Errorf("meeting updated payload = %+v", updated)
	}
}

func TestNotifier_BusEchoIsTheOnlyDelivery(t *testing.T) {
	pub := &recordingPublisher{}
	bus := &fakeBus{}
	n := NewNotifier(pub, bus, nil)
	runNotifier(t, n)
	meetingID := uuid.New()

	n.MeetingUpdated(meetingID, "meeting_updated", uuid.New())
	waitFor(t, func() bool { return len(bus.published()) == 1 })

	if pub.count() != 0 {
		t.Fatalf("published locally before bus echo: %+v", pub.frames)
	}
	events := bus.published()
	if events[0].Kind != KindMeetingUpdated {
		t.Fatalf("bus events = %+v", events)
	}

	// The subscriber hands the echoed event back.
	n.Deliver(events[0])
	if pub.count() != 1 || pub.frames[0].meetingID != meetingID {
		t.Errorf("frames after echo = %+v", pub.frames)
	}
}

func TestNotifier_FallsBackWhenBusFails(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, &fakeBus{err: errors.New("connection refused")}, nil)
	runNotifier(t, n)

	n.PhaseChanged(uuid.New(), entities.PhaseTaskPlanning, entities.MeetingStatusActive)

	waitFor(t, func() bool { return pub.count() == 1 })
	if pub.frames[0].event != EventPhaseChanged {
		t.Errorf("frames = %+v, want one local phaseChanged", pub.frames)
	}
}

func TestNotifier_SlowBusDoesNotBlockCaller(t *testing.T) {
	pub := &recordingPublisher{}
	bus := &fakeBus{release: make(chan struct{})}
	n := NewNotifier(pub, bus, nil)
	runNotifier(t, n)
	meetingID := uuid.New()

	returned := make(chan struct{})
	go func() {
		n.PhaseChanged(meetingID, entities.PhaseUnderstandingContribution, entities.MeetingStatusActive)
		n.PhaseChanged(meetingID, entities.PhaseTaskPlanning, entities.MeetingStatusActive)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("notifier blocked on the bus")
	}

	close(bus.release)
	waitFor(t, func() bool { return len(bus.published()) == 2 })
	events := bus.published()
	if events[0].Phase != entities.PhaseUnderstandingContribution || events[1].Phase != entities.PhaseTaskPlanning {
		t.Errorf("bus order = %s, %s", events[0].Phase, events[1].Phase)
	}
}

func TestNotifier_FullQueueDeliversLocally(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, &fakeBus{}, nil)

	// Nothing drains the queue.
	for i := 0; i <= publishQueueSize; i++ {
		n.MeetingUpdated(uuid.New(), "meeting_updated", uuid.New())
	}

	if pub.count() != 1 {
		t.Errorf("local frames = %d, want 1 overflow delivery", pub.count())
	}
}

func TestNotifier_IgnoresUnknownKind(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, nil, nil)

	n.Deliver(Event{Kind: "mystery", MeetingID: uuid.New()})

	if len(pub.frames) != 0 {
		t.Errorf("frames = %+v, want none", pub.frames)
	}
}
