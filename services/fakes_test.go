package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

// memStore is the shared in-memory backing for the fake repositories. The fake
// transaction manager snapshots and restores it wholesale, which gives the
// service tests real rollback semantics without a database.
type memStore struct {
	events   map[int]*models.Event
	entries  map[int]*models.Entry
	rankings map[uuid.UUID]*models.Ranking

	nextEventID int
	nextEntryID int
}

func newMemStore() *memStore {
	return &memStore{
		events:      make(map[int]*models.Event),
		entries:     make(map[int]*models.Entry),
		rankings:    make(map[uuid.UUID]*models.Ranking),
		nextEventID: 1,
		nextEntryID: 1,
	}
}

func (m *memStore) clone() *memStore {
	cp := newMemStore()
	cp.nextEventID = m.nextEventID
	cp.nextEntryID = m.nextEntryID
	for id, event := range m.events {
		e := *event
		cp.events[id] = &e
	}
	for id, entry := range m.entries {
		e := *entry
		if entry.SignedOutAt != nil {
			t := *entry.SignedOutAt
			e.SignedOutAt = &t
		}
		if entry.Placement != nil {
			p := *entry.Placement
			e.Placement = &p
		}
		cp.entries[id] = &e
	}
	for id, ranking := range m.rankings {
		r := *ranking
		cp.rankings[id] = &r
	}
	return cp
}

func (m *memStore) restore(snapshot *memStore) {
	m.events = snapshot.events
	m.entries = snapshot.entries
	m.rankings = snapshot.rankings
	m.nextEventID = snapshot.nextEventID
	m.nextEntryID = snapshot.nextEntryID
}

func (m *memStore) addEvent(event *models.Event) *models.Event {
	event.ID = m.nextEventID
	m.nextEventID++
	if event.State == "" {
		event.State = models.EventStateActive
	}
	m.events[event.ID] = event
	return event
}

func (m *memStore) addEntry(entry *models.Entry) *models.Entry {
	entry.ID = m.nextEntryID
	m.nextEntryID++
	m.entries[entry.ID] = entry
	return entry
}

func (m *memStore) entriesByEvent(eventID int) []*models.Entry {
	var out []*models.Entry
	for _, entry := range m.entries {
		if entry.EventID == eventID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fakeTxManager runs the transaction body against the live store and restores
// a pre-call snapshot when the body errors, mirroring a real rollback.
type fakeTxManager struct {
	store *memStore
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	snapshot := f.store.clone()
	if err := fn(nil); err != nil {
		f.store.restore(snapshot)
		return err
	}
	return nil
}

type fakeEventRepo struct {
	store *memStore
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	f.store.addEvent(event)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	event, ok := f.store.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (f *fakeEventRepo) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error) {
	var out []*models.Event
	for _, event := range f.store.events {
		if event.SemesterID == semesterID {
			cp := *event
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	if _, ok := f.store.events[event.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	cp := *event
	f.store.events[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) TransitionState(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.EventState) error {
	event, ok := f.store.events[id]
	if !ok || event.State != from {
		return repositories.ErrEventStateConflict
	}
	event.State = to
	return nil
}

func (f *fakeEventRepo) IncrementRebuys(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	event, ok := f.store.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.Rebuys++
	return nil
}

func (f *fakeEventRepo) CountBySemester(ctx context.Context, semesterID uuid.UUID, state *models.EventState) (int, error) {
	count := 0
	for _, event := range f.store.events {
		if event.SemesterID != semesterID {
			continue
		}
		if state != nil && event.State != *state {
			continue
		}
		count++
	}
	return count, nil
}

type fakeEntryRepo struct {
	store *memStore
}

func (f *fakeEntryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.Entry) error {
	for _, existing := range f.store.entries {
		if existing.EventID == entry.EventID && existing.MembershipID == entry.MembershipID {
			return repositories.ErrEntryConflict
		}
	}
	entry.CreatedAt = time.Now()
	f.store.addEntry(entry)
	return nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Entry, error) {
	entry, ok := f.store.entries[id]
	if !ok {
		return nil, repositories.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeEntryRepo) FindByMembershipAndEvent(ctx context.Context, exec repositories.SQLExecutor, membershipID uuid.UUID, eventID int) (*models.Entry, error) {
	for _, entry := range f.store.entries {
		if entry.EventID == eventID && entry.MembershipID == membershipID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, repositories.ErrEntryNotFound
}

func (f *fakeEntryRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]*models.Entry, error) {
	return f.store.entriesByEvent(eventID), nil
}

func (f *fakeEntryRepo) ListUnresolved(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]*models.Entry, error) {
	var out []*models.Entry
	for _, entry := range f.store.entriesByEvent(eventID) {
		if entry.SignedOutAt == nil {
			out = append(out, entry)
		}
	}
	return out, nil
}

// ListForSettlement orders by sign-out time descending with unresolved entries
// first, matching the SQL NULLS FIRST ordering.
func (f *fakeEntryRepo) ListForSettlement(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]*models.Entry, error) {
	out := f.store.entriesByEvent(eventID)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SignedOutAt, out[j].SignedOutAt
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out, nil
}

func (f *fakeEntryRepo) SetSignedOutAt(ctx context.Context, exec repositories.SQLExecutor, id int, signedOutAt *time.Time) error {
	entry, ok := f.store.entries[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	entry.SignedOutAt = signedOutAt
	return nil
}

func (f *fakeEntryRepo) UpdatePlacement(ctx context.Context, exec repositories.SQLExecutor, id int, placement int) error {
	entry, ok := f.store.entries[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	entry.Placement = &placement
	return nil
}

func (f *fakeEntryRepo) ClearPlacements(ctx context.Context, exec repositories.SQLExecutor, eventID int) error {
	for _, entry := range f.store.entries {
		if entry.EventID == eventID {
			entry.Placement = nil
		}
	}
	return nil
}

func (f *fakeEntryRepo) IncrementRebuys(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	entry, ok := f.store.entries[id]
	if !ok {
		return repositories.ErrEntryNotFound
	}
	entry.Rebuys++
	return nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.store.entries[id]; !ok {
		return repositories.ErrEntryNotFound
	}
	delete(f.store.entries, id)
	return nil
}

// fakeRankingRepo mirrors the upsert semantics of the Postgres implementation.
// Setting failOn makes the Nth ApplyPoints call fail, which lets lifecycle
// tests prove that a mid-settlement fault rolls everything back.
type fakeRankingRepo struct {
	store      *memStore
	applyCalls int
	failOn     int
	failErr    error
}

func (f *fakeRankingRepo) ApplyPoints(ctx context.Context, exec repositories.SQLExecutor, membershipID uuid.UUID, points int) error {
	f.applyCalls++
	if f.failOn > 0 && f.applyCalls == f.failOn {
		return f.failErr
	}
	ranking, ok := f.store.rankings[membershipID]
	if !ok {
		ranking = &models.Ranking{MembershipID: membershipID}
		f.store.rankings[membershipID] = ranking
	}
	ranking.Points += points
	ranking.Attendance++
	return nil
}

func (f *fakeRankingRepo) RevertPoints(ctx context.Context, exec repositories.SQLExecutor, membershipID uuid.UUID, points int) error {
	ranking, ok := f.store.rankings[membershipID]
	if !ok {
		return repositories.ErrRankingNotFound
	}
	ranking.Points -= points
	if ranking.Points < 0 {
		ranking.Points = 0
	}
	if ranking.Attendance > 0 {
		ranking.Attendance--
	}
	return nil
}

func (f *fakeRankingRepo) GetByMembership(ctx context.Context, exec repositories.SQLExecutor, membershipID uuid.UUID) (*models.Ranking, error) {
	ranking, ok := f.store.rankings[membershipID]
	if !ok {
		return nil, repositories.ErrRankingNotFound
	}
	cp := *ranking
	return &cp, nil
}

func (f *fakeRankingRepo) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error) {
	var out []models.RankingRow
	for _, ranking := range f.store.rankings {
		out = append(out, models.RankingRow{
			MembershipID: ranking.MembershipID,
			Points:       ranking.Points,
			Attendance:   ranking.Attendance,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].MembershipID.String() < out[j].MembershipID.String()
	})
	return out, nil
}

func (f *fakeRankingRepo) SumPointsBySemester(ctx context.Context, semesterID uuid.UUID) (int, error) {
	total := 0
	for _, ranking := range f.store.rankings {
		total += ranking.Points
	}
	return total, nil
}
