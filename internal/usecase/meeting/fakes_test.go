package meeting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/internal/domain/repositories"
)

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func cloneMeeting(m *entities.Meeting) *entities.Meeting {
	raw, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	var out entities.Meeting
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.meetings[m.ID] = cloneMeeting(m)
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneMeeting(m), nil
}

func (r *fakeMeetingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.meetings[m.ID] = cloneMeeting(m)
	return nil
}

func (r *fakeMeetingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.meetings, id)
	return nil
}

func (r *fakeMeetingRepo) List(_ context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Meeting
	for _, m := range r.meetings {
		if filters.Status != nil && m.Status != *filters.Status {
			continue
		}
		if filters.ParticipantID != nil && !m.IsParticipant(*filters.ParticipantID) {
			continue
		}
		out = append(out, cloneMeeting(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMeetingRepo) ActivateDue(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, m := range r.meetings {
		if m.Status == entities.MeetingStatusUpcoming && !m.UpcomingDate.After(now) {
			m.Status = entities.MeetingStatusActive
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task

	// afterLockedRead runs outside mu once a locked read returns.
	afterLockedRead func(t *entities.Task)
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tasks {
		if existing.MeetingID == t.MeetingID && existing.AuthorID == t.AuthorID {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	t, err := r.FindByID(ctx, id)
	if err == nil && r.afterLockedRead != nil {
		r.afterLockedRead(t)
	}
	return t, err
}

func (r *fakeTaskRepo) FindByMeetingAndAuthorForUpdate(_ context.Context, meetingID, authorID uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	var found *entities.Task
	for _, t := range r.tasks {
		if t.MeetingID == meetingID && t.AuthorID == authorID {
			copied := *t
			found = &copied
			break
		}
	}
	r.mu.Unlock()

	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if r.afterLockedRead != nil {
		r.afterLockedRead(found)
	}
	return found, nil
}

func (r *fakeTaskRepo) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Task
	for _, t := range r.tasks {
		if t.MeetingID == meetingID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByAuthor(_ context.Context, authorID uuid.UUID, completed *bool) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Task
	for _, t := range r.tasks {
		if t.AuthorID != authorID || (completed != nil && t.IsCompleted != *completed) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

func (r *fakeTaskRepo) UpdateUnapproved(_ context.Context, t *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[t.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Approved {
		return entities.ErrTaskLocked
	}
	copied := *t
	copied.Approved = false
	r.tasks[t.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Approved = approved
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entities.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.User, error) {
	out := make(map[uuid.UUID]*entities.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entities.User, error) {
	out := make([]*entities.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePresence struct {
	mu      sync.Mutex
	rosters map[uuid.UUID][]entities.PresenceRecord
}

func newFakePresence() *fakePresence {
	return &fakePresence{rosters: make(map[uuid.UUID][]entities.PresenceRecord)}
}

func (p *fakePresence) connect(meetingID uuid.UUID, users ...*entities.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now().UTC()
	for _, u := range users {
		p.rosters[meetingID] = append(p.rosters[meetingID], entities.PresenceRecord{
			UserID:    u.ID,
			FullName:  u.FullName,
			Email:     u.Email,
			ChannelID: uuid.NewString(),
			JoinedAt:  now,
			LastSeen:  now,
		})
	}
}

func (p *fakePresence) List(meetingID uuid.UUID) []entities.PresenceRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.PresenceRecord{}, p.rosters[meetingID]...)
}

type phaseEvent struct {
	MeetingID uuid.UUID
	Phase     entities.MeetingPhase
	Status    entities.MeetingStatus
}

type updateEvent struct {
	MeetingID uuid.UUID
	Type      string
	UserID    uuid.UUID
}

type fakeNotifier struct {
	mu      sync.Mutex
	phases  []phaseEvent
	updates []updateEvent
}

func (n *fakeNotifier) PhaseChanged(meetingID uuid.UUID, phase entities.MeetingPhase, status entities.MeetingStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.phases = append(n.phases, phaseEvent{meetingID, phase, status})
}

func (n *fakeNotifier) MeetingUpdated(meetingID uuid.UUID, eventType string, userID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, updateEvent{meetingID, eventType, userID})
}

type fakeArchiver struct {
	key     string
	payload []byte
	err     error
}

func (a *fakeArchiver) Archive(_ context.Context, key string, payload []byte) (*ArchivedReport, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.key = key
	a.payload = payload
	return &ArchivedReport{ObjectKey: key, URL: "http://storage.local/" + key, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeLocker struct {
	held     bool
	released int
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() { l.released++ }, true, nil
}

type fixture struct {
	svc      *MeetingService
	meetings *fakeMeetingRepo
	tasks    *fakeTaskRepo
	presence *fakePresence
	notifier *fakeNotifier
	archiver *fakeArchiver
	creator  *entities.User
	alice    *entities.User
	bob      *entities.User
}

func newFixture(policy SubmissionPolicy) *fixture {
	f := &fixture{
		meetings: newFakeMeetingRepo(),
		tasks:    newFakeTaskRepo(),
		presence: newFakePresence(),
		notifier: &fakeNotifier{},
		archiver: &fakeArchiver{},
		creator:  &entities.User{ID: uuid.New(), FullName: "Carol Creator", Email: "carol@example.com"},
		alice:    &entities.User{ID: uuid.New(), FullName: "Alice", Email: "alice@example.com"},
		bob:      &entities.User{ID: uuid.New(), FullName: "Bob", Email: "bob@example.com"},
	}
	f.svc = NewMeetingService(Dependencies{
		MeetingRepo: f.meetings,
		TaskRepo:    f.tasks,
		UserRepo:    newFakeUserRepo(f.creator, f.alice, f.bob),
		Transactor:  fakeTransactor{},
		Presence:    f.presence,
		Notifier:    f.notifier,
		Archiver:    f.archiver,
		Policy:      policy,
	})
	return f
}

func (f *fixture) createMeeting(ctx context.Context) *entities.Meeting {
	m, err := f.svc.CreateMeeting(ctx, CreateMeetingInput{
		Title:          "Retro",
		Question:       "How did the sprint go?",
		ParticipantIDs: []uuid.UUID{f.alice.ID, f.bob.ID},
		CreatorID:      f.creator.ID,
	})
	if err != nil {
		panic(err)
	}
	return m
}
