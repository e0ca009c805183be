package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates map[uuid.UUID][][]entities.PresenceRecord
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{updates: make(map[uuid.UUID][][]entities.PresenceRecord)}
}

func (b *recordingBroadcaster) ParticipantsUpdated(meetingID uuid.UUID, roster []entities.PresenceRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates[meetingID] = append(b.updates[meetingID], roster)
}

func (b *recordingBroadcaster) count(meetingID uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates[meetingID])
}

func (b *recordingBroadcaster) last(meetingID uuid.UUID) []entities.PresenceRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.updates[meetingID]
	if len(u) == 0 {
		return nil
	}
	return u[len(u)-1]
}

func identity(name string) entities.Identity {
	return entities.Identity{UserID: uuid.New(), FullName: name, Email: name + "@example.com"}
}

func TestRegisterBroadcastsRoster(t *testing.T) {
	b := newRecordingBroadcaster()
	tr := NewTracker(b, nil)
	meetingID := uuid.New()
	ann, bob := identity("ann"), identity("bob")

	tr.Register(meetingID, ann, "c1")
	roster := tr.Register(meetingID, bob, "c2")

	if len(roster) != 2 {
		t.Fatalf("roster size = %d, want 2", len(roster))
	}
	if b.count(meetingID) != 2 {
		t.Fatalf("broadcasts = %d, want 2", b.count(meetingID))
	}
	if got := b.last(meetingID); len(got) != 2 {
		t.Fatalf("last broadcast roster = %v", got)
	}
}

func TestRegisterSameUserReplacesChannel(t *testing.T) {
	tr := NewTracker(nil, nil)
	meetingID := uuid.New()
	ann := identity("ann")

	first := tr.Register(meetingID, ann, "old")
	roster := tr.Register(meetingID, ann, "new")

	if len(roster) != 1 {
		t.Fatalf("roster size = %d, want 1", len(roster))
	}
	if roster[0].ChannelID != "new" {
		t.Errorf("channel = %q, want new", roster[0].ChannelID)
	}
	if !roster[0].JoinedAt.Equal(first[0].JoinedAt) {
		t.Errorf("joinedAt changed on reconnect")
	}
}

func TestStaleDeregisterIsIgnored(t *testing.T) {
	b := newRecordingBroadcaster()
	tr := NewTracker(b, nil)
	meetingID := uuid.New()
	ann := identity("ann")

	tr.Register(meetingID, ann, "old")
	tr.Register(meetingID, ann, "new")
	before := b.count(meetingID)

	if tr.Deregister(meetingID, ann.UserID, "old") {
		t.Fatal("stale channel removed a newer record")
	}
	if got := tr.List(meetingID); len(got) != 1 || got[0].ChannelID != "new" {
		t.Fatalf("roster = %+v, want record on channel new", got)
	}
	if b.count(meetingID) != before {
		t.Error("stale deregister must not broadcast")
	}

	// A disconnect of the stale channel is a no-op as well.
	if changed := tr.DeregisterChannel("old"); len(changed) != 0 {
		t.Fatalf("DeregisterChannel(old) changed %v", changed)
	}
	if len(tr.List(meetingID)) != 1 {
		t.Fatal("record removed by stale channel disconnect")
	}
}

func TestDeregisterDropsEmptyMeeting(t *testing.T) {
	b := newRecordingBroadcaster()
	tr := NewTracker(b, nil)
	meetingID := uuid.New()
	ann := identity("ann")

	tr.Register(meetingID, ann, "c1")
	if !tr.Deregister(meetingID, ann.UserID, "c1") {
		t.Fatal("Deregister() = false, want true")
	}
	if got := tr.List(meetingID); len(got) != 0 {
		t.Fatalf("roster = %v, want empty", got)
	}
	if len(tr.Meetings()) != 0 {
		t.Fatalf("meetings = %v, want none", tr.Meetings())
	}
	if got := b.last(meetingID); got == nil || len(got) != 0 {
		t.Fatalf("last broadcast = %v, want empty roster", got)
	}

	// Re-registering after the room was dropped creates a fresh room.
	tr.Register(meetingID, ann, "c2")
	if got := tr.List(meetingID); len(got) != 1 {
		t.Fatalf("roster after rejoin = %v", got)
	}
}

func TestUnknownMeeting(t *testing.T) {
	tr := NewTracker(nil, nil)
	if got := tr.List(uuid.New()); got == nil || len(got) != 0 {
		t.Fatalf("List(unknown) = %v, want empty", got)
	}
	if tr.Deregister(uuid.New(), uuid.New(), "c") {
		t.Fatal("Deregister(unknown) = true")
	}
}

func TestDeregisterChannelAcrossMeetings(t *testing.T) {
	tr := NewTracker(nil, nil)
	m1, m2 := uuid.New(), uuid.New()
	ann, bob := identity("ann"), identity("bob")

	tr.Register(m1, ann, "c1")
	tr.Register(m2, ann, "c1")
	tr.Register(m1, bob, "c2")

	changed := tr.DeregisterChannel("c1")
	if len(changed) != 2 {
		t.Fatalf("changed = %v, want both meetings", changed)
	}
	if got := tr.List(m1); len(got) != 1 || got[0].UserID != bob.UserID {
		t.Fatalf("m1 roster = %+v, want only bob", got)
	}
	if got := tr.List(m2); len(got) != 0 {
		t.Fatalf("m2 roster = %+v, want empty", got)
	}
}

func TestConcurrentRegisterDeregister(t *testing.T) {
	tr := NewTracker(newRecordingBroadcaster(), nil)
	meetingID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := identity(fmt.Sprintf("user%d", i))
			channel := fmt.Sprintf("c%d", i)
			tr.Register(meetingID, id, channel)
			if i%2 == 0 {
				tr.Deregister(meetingID, id.UserID, channel)
			}
		}(i)
	}
	wg.Wait()

	roster := tr.List(meetingID)
	if len(roster) != 25 {
		t.Fatalf("roster size = %d, want 25", len(roster))
	}
	seen := make(map[uuid.UUID]bool)
	for _, rec := range roster {
		if seen[rec.UserID] {
			t.Fatalf("duplicate roster entry for %s", rec.UserID)
		}
		seen[rec.UserID] = true
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker(nil, nil)
	meetingID := uuid.New()
	tr.Register(meetingID, identity("ann"), "c1")

	tr.Clear()
	if len(tr.List(meetingID)) != 0 || len(tr.Meetings()) != 0 {
		t.Fatal("Clear() left state behind")
	}
}
