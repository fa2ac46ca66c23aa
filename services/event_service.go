package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/live"
	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
	"github.com/uwpokerclub/clubhouse/scoring"
)

type CreateEventInput struct {
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	StartDate  time.Time `json:"start_date"`
	Notes      *string   `json:"notes"`
	SemesterID uuid.UUID `json:"semester_id"`
}

type UpdateEventInput struct {
	Name      *string    `json:"name"`
	Format    *string    `json:"format"`
	StartDate *time.Time `json:"start_date"`
	Notes     *string    `json:"notes"`
}

// EventService owns the event lifecycle. EndEvent and RestartEvent are the only
// two state transitions: active -> ended assigns placements and settles points,
// ended -> active reverses that settlement in full.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEventsBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error)
	EndEvent(ctx context.Context, id int) error
	RestartEvent(ctx context.Context, id int) error
}

type eventService struct {
	txManager   repositories.TxManager
	eventRepo   repositories.EventRepository
	entryRepo   repositories.EntryRepository
	rankingRepo repositories.RankingRepository
	table       scoring.Table
	hub         *live.Hub
	logger      *slog.Logger
}

func NewEventService(
	txManager repositories.TxManager,
	eventRepo repositories.EventRepository,
	entryRepo repositories.EntryRepository,
	rankingRepo repositories.RankingRepository,
	table scoring.Table,
	hub *live.Hub,
	logger *slog.Logger,
) EventService {
	return &eventService{
		txManager:   txManager,
		eventRepo:   eventRepo,
		entryRepo:   entryRepo,
		rankingRepo: rankingRepo,
		table:       table,
		hub:         hub,
		logger:      logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, ErrEventNameRequired
	}

	event := &models.Event{
		Name:       input.Name,
		Format:     input.Format,
		StartDate:  input.StartDate,
		Notes:      input.Notes,
		SemesterID: input.SemesterID,
		State:      models.EventStateActive,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventSemesterInvalid) {
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByEvent(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for event %d: %w", id, err)
	}
	event.Entries = entries
	return event, nil
}

func (s *eventService) ListEventsBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error) {
	events, err := s.eventRepo.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for semester %s: %w", semesterID, err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.State == models.EventStateEnded {
		return nil, ErrEventEnded
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrEventNameRequired
		}
		event.Name = *input.Name
	}
	if input.Format != nil {
		event.Format = *input.Format
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.Notes != nil {
		event.Notes = input.Notes
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

// EndEvent closes an event: every entry must already be signed out, placements
// are assigned by settlement order (most recent sign-out first), points are
// calculated per placement and folded into the semester rankings. The state
// flip, placement writes and ranking upserts all happen in one transaction, so
// a failure anywhere leaves the event active with nothing settled. The flip is
// a conditional active-to-ended transition inside the transaction, so of two
// concurrent EndEvent calls exactly one settles; the pre-check outside only
// exists to fail the common case early.
func (s *eventService) EndEvent(ctx context.Context, id int) error {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.State == models.EventStateEnded {
		return ErrEventAlreadyEnded
	}

	var fieldSize int
	err = s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		entries, err := s.entryRepo.ListForSettlement(ctx, exec, id)
		if err != nil {
			return fmt.Errorf("failed to list entries for settlement of event %d: %w", id, err)
		}
		for _, entry := range entries {
			if entry.SignedOutAt == nil {
				return ErrEntriesUnresolved
			}
		}

		err = s.eventRepo.TransitionState(ctx, exec, id, models.EventStateActive, models.EventStateEnded)
		if err != nil {
			if errors.Is(err, repositories.ErrEventStateConflict) {
				return ErrEventAlreadyEnded
			}
			return fmt.Errorf("failed to mark event %d ended: %w", id, err)
		}

		fieldSize = len(entries)
		for i, entry := range entries {
			placement := i + 1
			if err := s.entryRepo.UpdatePlacement(ctx, exec, entry.ID, placement); err != nil {
				return fmt.Errorf("failed to assign placement %d on event %d: %w", placement, id, err)
			}

			points, err := scoring.Calculate(s.table, fieldSize, placement)
			if err != nil {
				return fmt.Errorf("failed to calculate points for placement %d: %w", placement, err)
			}
			if err := s.rankingRepo.ApplyPoints(ctx, exec, entry.MembershipID, points); err != nil {
				return fmt.Errorf("failed to settle points for membership %s: %w", entry.MembershipID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("event settled",
		slog.Int("event_id", id),
		slog.Int("field_size", fieldSize),
	)
	s.broadcast(event.SemesterID, live.TypeEventEnded, id)
	return nil
}

// RestartEvent reverts a settled event to active, undoing the settlement in
// full: every previously awarded point total is subtracted from the rankings
// and all placements are cleared, so a later EndEvent cannot double-count.
func (s *eventService) RestartEvent(ctx context.Context, id int) error {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.State != models.EventStateEnded {
		return ErrEventNotEnded
	}

	err = s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		entries, err := s.entryRepo.ListForSettlement(ctx, exec, id)
		if err != nil {
			return fmt.Errorf("failed to list entries for restart of event %d: %w", id, err)
		}

		fieldSize := len(entries)
		for _, entry := range entries {
			if entry.Placement == nil {
				continue
			}
			points, err := scoring.Calculate(s.table, fieldSize, *entry.Placement)
			if err != nil {
				return fmt.Errorf("failed to recalculate points for placement %d: %w", *entry.Placement, err)
			}
			if err := s.rankingRepo.RevertPoints(ctx, exec, entry.MembershipID, points); err != nil {
				return fmt.Errorf("failed to revert points for membership %s: %w", entry.MembershipID, err)
			}
		}

		if err := s.entryRepo.ClearPlacements(ctx, exec, id); err != nil {
			return fmt.Errorf("failed to clear placements for event %d: %w", id, err)
		}
		err = s.eventRepo.TransitionState(ctx, exec, id, models.EventStateEnded, models.EventStateActive)
		if err != nil {
			if errors.Is(err, repositories.ErrEventStateConflict) {
				return ErrEventNotEnded
			}
			return fmt.Errorf("failed to mark event %d active: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("event settlement reverted", slog.Int("event_id", id))
	s.broadcast(event.SemesterID, live.TypeEventRestarted, id)
	return nil
}

func (s *eventService) loadEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	return event, nil
}

func (s *eventService) broadcast(semesterID uuid.UUID, messageType string, eventID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.SemesterRoom(semesterID.String()), live.Message{
		Type:    messageType,
		Payload: map[string]int{"event_id": eventID},
	})
}
