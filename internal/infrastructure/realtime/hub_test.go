package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/usecase/presence"
)

type nopConn struct{}

func (nopConn) SetReadLimit(int64) {}
func (nopConn) SetReadDeadline(time.Time) error { return nil }
func (nopConn) SetWriteDeadline(time.Time) error { return nil }
func (nopConn) SetPongHandler(func(string) error) {}
func (nopConn) ReadMessage() (int, []byte, error) { select {} }
func (nopConn) WriteMessage(int, []byte) error { return nil }
func (nopConn) Close() error { return nil }

type testHub struct {
	hub     *Hub
	tracker *presence.Tracker
	cancel  context.CancelFunc
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	hub := NewHub(nil)
	tracker := presence.NewTracker(hub, nil)
	hub.UsePresence(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return &testHub{hub: hub, tracker: tracker, cancel: cancel}
}

func (th *testHub) connect(t *testing.T, name string) *Client {
	t.Helper()
	c := NewClient(th.hub, nopConn{}, entities.Identity{
		UserID:   uuid.New(),
		FullName: name,
		Email:    name + "@example.com",
	}, nil)
	want := th.hub.ClientCount() + 1
	if !th.hub.Register(c) {
		t.Fatal("hub refused registration")
	}
	waitFor(t, func() bool { return th.hub.ClientCount() == want })
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// next pops one queued frame and decodes its payload into out.
func next(t *testing.T, c *Client, out any) string {
	t.Helper()
	select {
	case frame := <-c.send:
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("bad frame %s: %v", frame, err)
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("bad payload %s: %v", env.Data, err)
			}
		}
		return env.Event
	case <-time.After(time.Second):
		t.Fatal("no frame queued")
		return ""
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("unexpected frame %s", frame)
	default:
	}
}

func TestHub_JoinBroadcastsRoster(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, "alice")
	bob := th.connect(t, "bob")
	meetingID := uuid.New()

	ack := th.hub.join(alice, meetingID.String())
	if !ack.Success || ack.TotalParticipants != 1 || ack.MeetingID != meetingID.String() {
		t.Fatalf("alice ack = %+v", ack)
	}

	var roster ParticipantsUpdated
	if ev := next(t, alice, &roster); ev != EventParticipantsUpdated {
		t.Fatalf("event = %q, want %q", ev, EventParticipantsUpdated)
	}
	if roster.TotalParticipants != 1 || roster.Participants[0].UserID != alice.identity.UserID {
		t.Fatalf("roster after alice = %+v", roster)
	}
	assertEmpty(t, bob)

	ack = th.hub.join(bob, meetingID.String())
	if ack.TotalParticipants != 2 {
		t.Fatalf("bob ack total = %d, want 2", ack.TotalParticipants)
	}
	for _, c := range []*Client{alice, bob} {
		var r ParticipantsUpdated
		next(t, c, &r)
		if r.TotalParticipants != 2 {
			t.Errorf("%s saw %d participants, want 2", c.identity.FullName, r.TotalParticipants)
		}
	}
	if got := th.hub.RoomSize(meetingID); got != 2 {
		t.Errorf("room size = %d, want 2", got)
	}
}

func TestHub_JoinRejectsBadMeetingID(t *testing.T) {
	th := newTestHub(t)
	c := th.connect(t, "alice")

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "Meeting ID required"},
		{raw: "not-a-uuid", want: "Invalid meeting ID"},
	}
	for _, tt := range tests {
		ack := th.hub.join(c, tt.raw)
		if ack.Success || ack.Error != tt.want {
			t.Errorf("join(%q) = %+v, want error %q", tt.raw, ack, tt.want)
		}
	}
	assertEmpty(t, c)
}

func TestHub_LeaveNotifiesRemainingMembers(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, "alice")
	bob := th.connect(t, "bob")
	meetingID := uuid.New()

	th.hub.join(alice, meetingID.String())
	th.hub.join(bob, meetingID.String())
	next(t, alice, nil)
	next(t, alice, nil)
	next(t, bob, nil)

	ack := th.hub.leave(bob, meetingID.String())
	if !ack.Success {
		t.Fatalf("leave ack = %+v", ack)
	}

	var roster ParticipantsUpdated
	next(t, alice, &roster)
	if roster.TotalParticipants != 1 || roster.Participants[0].UserID != alice.identity.UserID {
		t.Fatalf("roster after leave = %+v", roster)
	}
	assertEmpty(t, bob)
}

func TestHub_DisconnectDeregistersEveryMeeting(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, "alice")
	bob := th.connect(t, "bob")
	m1, m2 := uuid.New(), uuid.New()

	th.hub.join(alice, m1.String())
	th.hub.join(alice, m2.String())
	th.hub.join(bob, m1.String())

	th.hub.unregister(alice)
	waitFor(t, func() bool { return th.hub.ClientCount() == 1 })

	if got := th.tracker.List(m2); len(got) != 0 {
		t.Errorf("m2 roster = %+v, want empty", got)
	}
	roster := th.tracker.List(m1)
	if len(roster) != 1 || roster[0].UserID != bob.identity.UserID {
		t.Errorf("m1 roster = %+v, want only bob", roster)
	}
	if th.hub.RoomSize(m2) != 0 {
		t.Error("empty room was not removed")
	}
	if alice.enqueue([]byte("x")) {
		t.Error("closed client accepted a frame")
	}
}

func TestHub_PublishDoesNotBlockOnSlowClient(t *testing.T) {
	th := newTestHub(t)
	slow := th.connect(t, "slow")
	meetingID := uuid.New()
	th.hub.join(slow, meetingID.String())

	for i := 0; i < sendBuffer+10; i++ {
		th.hub.Publish(meetingID, EventMeetingUpdated, MeetingUpdated{MeetingID: meetingID})
	}
	if got := len(slow.send); got != sendBuffer {
		t.Errorf("queued = %d, want %d", got, sendBuffer)
	}
}

func TestHub_RegisterAfterStop(t *testing.T) {
	th := newTestHub(t)
	th.cancel()
	waitFor(t, func() bool {
		select {
		case <-th.hub.done:
			return true
		default:
			return false
		}
	})

	c := NewClient(th.hub, nopConn{}, entities.Identity{UserID: uuid.New()}, nil)
	if th.hub.Register(c) {
		t.Error("stopped hub accepted a client")
	}
}

func TestClient_MalformedMeetingRequest(t *testing.T) {
	th := newTestHub(t)
	c := th.connect(t, "alice")

	for _, event := range []string{EventJoinMeeting, EventLeaveMeeting} {
		for _, data := range []string{`"oops"`, `{"meetingId":42}`} {
			c.dispatch(Envelope{Event: event, Data: json.RawMessage(data)})

			var body ErrorMessage
			if ev := next(t, c, &body); ev != EventError || body.Message != "Malformed message" {
				t.Errorf("%s %s: got %q %+v, want error frame", event, data, ev, body)
			}
			assertEmpty(t, c)
		}
	}

	// A missing body still reaches the meeting id check.
	c.dispatch(Envelope{Event: EventJoinMeeting})
	var ack JoinAck
	if ev := next(t, c, &ack); ev != EventJoinMeetingAck || ack.Error != "Meeting ID required" {
		t.Errorf("empty join: got %q %+v", ev, ack)
	}
}
