package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
)

// Event kinds carried on the cross-instance bus
const (
	KindPhaseChanged   = "phase_changed"
	KindMeetingUpdated = "meeting_updated"
)

const (
	publishTimeout   = 2 * time.Second
	publishQueueSize = 256
)

// Event is a meeting notification as it travels between instances.
type Event struct {
	Kind      string                 `json:"kind"`
	MeetingID uuid.UUID              `json:"meetingId"`
	Phase     entities.MeetingPhase  `json:"phase,omitempty"`
	Status    entities.MeetingStatus `json:"status,omitempty"`
	Type      string                 `json:"type,omitempty"`
	UserID    uuid.UUID              `json:"userId"`
	Timestamp time.Time              `json:"timestamp"`
}

// Bus relays events to every API instance, this one included.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
}

// Publisher delivers a frame to the local room of a meeting.
type Publisher interface {
	Publish(meetingID uuid.UUID, event string, data any)
}

// Notifier turns usecase notifications into realtime events. With a bus, delivery happens
// when the event comes back from the bus; without one it is delivered locally. Bus
// publishes are queued and sent in order by Run.
type Notifier struct {
	local  Publisher
	bus    Bus
	queue  chan Event
	logger *zap.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier. bus may be nil for single-instance deployments.
func NewNotifier(local Publisher, bus Bus, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{
		local:  local,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if bus != nil {
		n.queue = make(chan Event, publishQueueSize)
	}
	return n
}

// Run publishes queued events to the bus until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	if n.bus == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.queue:
			n.publish(ctx, ev)
		}
	}
}

// PhaseChanged implements meeting.Notifier
func (n *Notifier) PhaseChanged(meetingID uuid.UUID, phase entities.MeetingPhase, status entities.MeetingStatus) {
	metrics.RecordPhaseChange(string(phase))
	n.dispatch(Event{
		Kind:      KindPhaseChanged,
		MeetingID: meetingID,
		Phase:     phase,
		Status:    status,
		Timestamp: n.now(),
	})
}

// MeetingUpdated implements meeting.Notifier and task.Notifier
func (n *Notifier) MeetingUpdated(meetingID uuid.UUID, eventType string, userID uuid.UUID) {
	n.dispatch(Event{
		Kind:      KindMeetingUpdated,
		MeetingID: meetingID,
		Type:      eventType,
		UserID:    userID,
		Timestamp: n.now(),
	})
}

func (n *Notifier) dispatch(ev Event) {
	if n.bus == nil {
		n.Deliver(ev)
		return
	}

	select {
	case n.queue <- ev:
	default:
		n.logger.Warn("event bus queue full, delivering locally",
			zap.String("meeting_id", ev.MeetingID.String()),
			zap.String("kind", ev.Kind),
		)
		n.Deliver(ev)
	}
}

func (n *Notifier) publish(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.bus.Publish(ctx, ev); err != nil {
		// Other instances miss this one; local subscribers still get it.
		n.logger.Warn("event bus publish failed, delivering locally",
			zap.String("meeting_id", ev.MeetingID.String()),
			zap.String("kind", ev.Kind),
			zap.Error(err),
		)
		n.Deliver(ev)
	}
}

// Deliver pushes an event to the local meeting room.
func (n *Notifier) Deliver(ev Event) {
	switch ev.Kind {
	case KindPhaseChanged:
		n.local.Publish(ev.MeetingID, EventPhaseChanged, PhaseChanged{
			MeetingID: ev.MeetingID,
			Phase:     ev.Phase,
			Status:    ev.Status,
		})
	case KindMeetingUpdated:
		n.local.Publish(ev.MeetingID, EventMeetingUpdated, MeetingUpdated{
			MeetingID: ev.MeetingID,
			Type:      ev.Type,
			UserID:    ev.UserID,
			Timestamp: ev.Timestamp,
		})
	default:
		n.logger.Warn("unknown event kind", zap.String("kind", ev.Kind))
	}
}
