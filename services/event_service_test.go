package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
	"github.com/uwpokerclub/clubhouse/scoring"
)

type eventServiceFixture struct {
	store       *memStore
	eventRepo   *fakeEventRepo
	entryRepo   *fakeEntryRepo
	rankingRepo *fakeRankingRepo
	service     EventService
}

func newEventServiceFixture(t *testing.T) *eventServiceFixture {
	t.Helper()
	store := newMemStore()
	eventRepo := &fakeEventRepo{store: store}
	entryRepo := &fakeEntryRepo{store: store}
	rankingRepo := &fakeRankingRepo{store: store}
	service := NewEventService(
		&fakeTxManager{store: store},
		eventRepo,
		entryRepo,
		rankingRepo,
		scoring.DefaultTable(),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &eventServiceFixture{
		store:       store,
		eventRepo:   eventRepo,
		entryRepo:   entryRepo,
		rankingRepo: rankingRepo,
		service:     service,
	}
}

// seedEvent creates an event with n entries. Entries sign out in index order,
// so a higher index means a later sign-out and a better placement. signedOut[i]
// set to false leaves entry i unresolved; a nil slice signs everyone out.
func (f *eventServiceFixture) seedEvent(n int, signedOut []bool) (*models.Event, []*models.Entry) {
	event := f.store.addEvent(&models.Event{
		Name:       "Weekly Tournament",
		SemesterID: uuid.New(),
		StartDate:  time.Now(),
		State:      models.EventStateActive,
	})

	base := time.Now().Add(-time.Hour)
	entries := make([]*models.Entry, 0, n)
	for i := 0; i < n; i++ {
		entry := &models.Entry{
			MembershipID: uuid.New(),
			EventID:      event.ID,
		}
		if signedOut == nil || signedOut[i] {
			ts := base.Add(time.Duration(i) * time.Minute)
			entry.SignedOutAt = &ts
		}
		f.store.addEntry(entry)
		entries = append(entries, entry)
	}
	return event, entries
}

func TestEndEvent_AssignsPlacementPermutation(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))

	stored := f.store.events[event.ID]
	assert.Equal(t, models.EventStateEnded, stored.State)

	// Placements must be exactly 1..5 with no repeats, and the latest sign-out
	// takes first place.
	seen := make(map[int]bool)
	for _, entry := range entries {
		placed := f.store.entries[entry.ID]
		require.NotNil(t, placed.Placement)
		assert.GreaterOrEqual(t, *placed.Placement, 1)
		assert.LessOrEqual(t, *placed.Placement, 5)
		assert.False(t, seen[*placed.Placement], "placement %d assigned twice", *placed.Placement)
		seen[*placed.Placement] = true
	}
	assert.Equal(t, 1, *f.store.entries[entries[4].ID].Placement, "last sign-out wins")
	assert.Equal(t, 5, *f.store.entries[entries[0].ID].Placement, "first sign-out finishes last")
}

func TestEndEvent_SettlesPoints(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))

	// Field of 5 with the default table: base * 5 / 50.
	winner := f.store.rankings[entries[4].MembershipID]
	require.NotNil(t, winner)
	assert.Equal(t, 10, winner.Points, "100 * 5 / 50")
	assert.Equal(t, 1, winner.Attendance)

	last := f.store.rankings[entries[0].MembershipID]
	require.NotNil(t, last)
	assert.Equal(t, 4, last.Points, "40 * 5 / 50")
	assert.Equal(t, 1, last.Attendance)
}

func TestEndEvent_UnresolvedEntriesBlockSettlement(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(3, []bool{true, false, true})

	err := f.service.EndEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEntriesUnresolved)

	// Nothing settled, event still active.
	assert.Equal(t, models.EventStateActive, f.store.events[event.ID].State)
	assert.Empty(t, f.store.rankings)
	for _, entry := range entries {
		assert.Nil(t, f.store.entries[entry.ID].Placement)
	}
}

func TestEndEvent_AlreadyEnded(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(3, nil)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))
	pointsAfterFirst := f.store.rankings[entries[2].MembershipID].Points

	err := f.service.EndEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEventAlreadyEnded)

	// A rejected second settlement must not touch the totals.
	assert.Equal(t, pointsAfterFirst, f.store.rankings[entries[2].MembershipID].Points)
	assert.Equal(t, 1, f.store.rankings[entries[2].MembershipID].Attendance)
}

func TestEndEvent_NotFound(t *testing.T) {
	f := newEventServiceFixture(t)
	err := f.service.EndEvent(context.Background(), 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEndEvent_MidSettlementFaultRollsBackEverything(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	injected := errors.New("rankings table unavailable")
	f.rankingRepo.failOn = 3
	f.rankingRepo.failErr = injected

	err := f.service.EndEvent(context.Background(), event.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	// All-or-nothing: the first two successful upserts, the placements written
	// so far and the state flip must all be undone.
	assert.Equal(t, models.EventStateActive, f.store.events[event.ID].State)
	assert.Empty(t, f.store.rankings)
	for _, entry := range entries {
		assert.Nil(t, f.store.entries[entry.ID].Placement)
	}
}

// staleEventRepo serves reads that lag behind the store, reproducing the
// interleaving where two concurrent EndEvent calls both observe the event as
// active before either transaction commits.
type staleEventRepo struct {
	*fakeEventRepo
	stale *models.Event
}

func (r *staleEventRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	if r.stale != nil && r.stale.ID == id {
		cp := *r.stale
		return &cp, nil
	}
	return r.fakeEventRepo.GetByID(ctx, exec, id)
}

func TestEndEvent_ConcurrentEndSettlesExactlyOnce(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	// The losing caller read the event while it was still active.
	staleCopy := *event
	staleCopy.State = models.EventStateActive
	staleRepo := &staleEventRepo{fakeEventRepo: f.eventRepo, stale: &staleCopy}
	racingService := NewEventService(
		&fakeTxManager{store: f.store},
		staleRepo,
		f.entryRepo,
		f.rankingRepo,
		scoring.DefaultTable(),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))
	firstRun := make(map[uuid.UUID]int)
	for _, entry := range entries {
		firstRun[entry.MembershipID] = f.store.rankings[entry.MembershipID].Points
	}

	// The racer's pre-check passes on its stale read, so the in-transaction
	// state transition is the only thing standing between it and a second
	// settlement.
	err := racingService.EndEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEventAlreadyEnded)

	for _, entry := range entries {
		ranking := f.store.rankings[entry.MembershipID]
		assert.Equal(t, firstRun[entry.MembershipID], ranking.Points,
			"a racing settlement must not award points a second time")
		assert.Equal(t, 1, ranking.Attendance)
	}
	assert.Equal(t, models.EventStateEnded, f.store.events[event.ID].State)
}

func TestRestartEvent_FullyReversesSettlement(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))
	require.NoError(t, f.service.RestartEvent(context.Background(), event.ID))

	assert.Equal(t, models.EventStateActive, f.store.events[event.ID].State)
	for _, entry := range entries {
		assert.Nil(t, f.store.entries[entry.ID].Placement)
		ranking := f.store.rankings[entry.MembershipID]
		require.NotNil(t, ranking)
		assert.Equal(t, 0, ranking.Points)
		assert.Equal(t, 0, ranking.Attendance)
	}
}

func TestRestartEvent_ThenEndAgainDoesNotDoubleCount(t *testing.T) {
	f := newEventServiceFixture(t)
	event, entries := f.seedEvent(5, nil)

	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))
	firstRun := make(map[uuid.UUID]int)
	for _, entry := range entries {
		firstRun[entry.MembershipID] = f.store.rankings[entry.MembershipID].Points
	}

	require.NoError(t, f.service.RestartEvent(context.Background(), event.ID))
	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))

	for _, entry := range entries {
		ranking := f.store.rankings[entry.MembershipID]
		assert.Equal(t, firstRun[entry.MembershipID], ranking.Points,
			"re-settlement must award the same points once, not twice")
		assert.Equal(t, 1, ranking.Attendance)
	}
}

func TestRestartEvent_RequiresEndedEvent(t *testing.T) {
	f := newEventServiceFixture(t)
	event, _ := f.seedEvent(2, nil)

	err := f.service.RestartEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEventNotEnded)
}

func TestUpdateEvent_RejectedAfterEnd(t *testing.T) {
	f := newEventServiceFixture(t)
	event, _ := f.seedEvent(2, nil)
	require.NoError(t, f.service.EndEvent(context.Background(), event.ID))

	name := "Renamed"
	_, err := f.service.UpdateEvent(context.Background(), event.ID, UpdateEventInput{Name: &name})
	assert.ErrorIs(t, err, ErrEventEnded)
}

func TestCreateEvent_RequiresName(t *testing.T) {
	f := newEventServiceFixture(t)

	_, err := f.service.CreateEvent(context.Background(), CreateEventInput{SemesterID: uuid.New()})
	assert.ErrorIs(t, err, ErrEventNameRequired)
}

func TestCreateEvent_StartsActive(t *testing.T) {
	f := newEventServiceFixture(t)

	event, err := f.service.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Opening Night",
		Format:     "No Limit Hold'em",
		StartDate:  time.Now(),
		SemesterID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStateActive, event.State)
	assert.NotZero(t, event.ID)
}
