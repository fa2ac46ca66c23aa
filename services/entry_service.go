package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

type RegisterEntriesInput struct {
	EventID       int         `json:"event_id"`
	MembershipIDs []uuid.UUID `json:"membership_ids"`
}

// RegisterRejection reports one membership that could not be registered,
// without failing the rest of the batch.
type RegisterRejection struct {
	MembershipID uuid.UUID `json:"membership_id"`
	Reason       string    `json:"reason"`
}

type RegisterResult struct {
	SignedIn []*models.Entry     `json:"signed_in"`
	Errors   []RegisterRejection `json:"errors"`
}

// EntryService is the per-event entry ledger: sign-ins, sign-outs, rebuys and
// removals, all restricted to active events. Once the owning event is ended
// every mutation is rejected, which is the system's defense against modifying
// a closed event.
type EntryService interface {
	Register(ctx context.Context, input RegisterEntriesInput) (*RegisterResult, error)
	SignOut(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error)
	SignIn(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error)
	Rebuy(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error)
	Remove(ctx context.Context, eventID int, membershipID uuid.UUID) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.Entry, error)
	ListUnresolved(ctx context.Context, eventID int) ([]*models.Entry, error)
}

type entryService struct {
	txManager repositories.TxManager
	entryRepo repositories.EntryRepository
	eventRepo repositories.EventRepository
}

func NewEntryService(
	txManager repositories.TxManager,
	entryRepo repositories.EntryRepository,
	eventRepo repositories.EventRepository,
) EntryService {
	return &entryService{
		txManager: txManager,
		entryRepo: entryRepo,
		eventRepo: eventRepo,
	}
}

// Register signs in a batch of memberships. Each candidate succeeds or fails
// on its own: duplicates and unknown memberships land in the rejection list
// while the rest of the batch goes through.
func (s *entryService) Register(ctx context.Context, input RegisterEntriesInput) (*RegisterResult, error) {
	if _, err := s.loadActiveEvent(ctx, input.EventID); err != nil {
		return nil, err
	}

	result := &RegisterResult{
		SignedIn: make([]*models.Entry, 0, len(input.MembershipIDs)),
		Errors:   make([]RegisterRejection, 0),
	}

	for _, membershipID := range input.MembershipIDs {
		entry := &models.Entry{
			MembershipID: membershipID,
			EventID:      input.EventID,
		}
		err := s.entryRepo.Create(ctx, nil, entry)
		switch {
		case err == nil:
			result.SignedIn = append(result.SignedIn, entry)
		case errors.Is(err, repositories.ErrEntryConflict):
			result.Errors = append(result.Errors, RegisterRejection{
				MembershipID: membershipID,
				Reason:       ErrAlreadyRegistered.Error(),
			})
		case errors.Is(err, repositories.ErrEntryMembershipInvalid):
			result.Errors = append(result.Errors, RegisterRejection{
				MembershipID: membershipID,
				Reason:       ErrMembershipNotFound.Error(),
			})
		default:
			return nil, fmt.Errorf("failed to register membership %s for event %d: %w", membershipID, input.EventID, err)
		}
	}
	return result, nil
}

func (s *entryService) SignOut(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error) {
	entry, err := s.loadActiveEntry(ctx, eventID, membershipID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.entryRepo.SetSignedOutAt(ctx, nil, entry.ID, &now); err != nil {
		return nil, fmt.Errorf("failed to sign out entry %d: %w", entry.ID, err)
	}
	entry.SignedOutAt = &now
	return entry, nil
}

// SignIn re-admits a previously signed-out participant by clearing the
// sign-out timestamp, so the entry reappears among the unresolved.
func (s *entryService) SignIn(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error) {
	entry, err := s.loadActiveEntry(ctx, eventID, membershipID)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.SetSignedOutAt(ctx, nil, entry.ID, nil); err != nil {
		return nil, fmt.Errorf("failed to sign in entry %d: %w", entry.ID, err)
	}
	entry.SignedOutAt = nil
	return entry, nil
}

// Rebuy bumps both the entry's and the event's rebuy counters in one
// transaction. The counters only feed statistics, never points.
func (s *entryService) Rebuy(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error) {
	entry, err := s.loadActiveEntry(ctx, eventID, membershipID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.entryRepo.IncrementRebuys(ctx, exec, entry.ID); err != nil {
			return fmt.Errorf("failed to increment entry rebuys: %w", err)
		}
		if err := s.eventRepo.IncrementRebuys(ctx, exec, eventID); err != nil {
			return fmt.Errorf("failed to increment event rebuys: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry.Rebuys++
	return entry, nil
}

func (s *entryService) Remove(ctx context.Context, eventID int, membershipID uuid.UUID) error {
	entry, err := s.loadActiveEntry(ctx, eventID, membershipID)
	if err != nil {
		return err
	}

	if err := s.entryRepo.Delete(ctx, nil, entry.ID); err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to remove entry %d: %w", entry.ID, err)
	}
	return nil
}

func (s *entryService) ListByEvent(ctx context.Context, eventID int) ([]*models.Entry, error) {
	entries, err := s.entryRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for event %d: %w", eventID, err)
	}
	return entries, nil
}

func (s *entryService) ListUnresolved(ctx context.Context, eventID int) ([]*models.Entry, error) {
	entries, err := s.entryRepo.ListUnresolved(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved entries for event %d: %w", eventID, err)
	}
	return entries, nil
}

func (s *entryService) loadActiveEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.State == models.EventStateEnded {
		return nil, ErrEventEnded
	}
	return event, nil
}

func (s *entryService) loadActiveEntry(ctx context.Context, eventID int, membershipID uuid.UUID) (*models.Entry, error) {
	if _, err := s.loadActiveEvent(ctx, eventID); err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.FindByMembershipAndEvent(ctx, nil, membershipID, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to load entry for membership %s on event %d: %w", membershipID, eventID, err)
	}
	return entry, nil
}
