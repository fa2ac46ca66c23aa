package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/uwpokerclub/clubhouse/models"
)

var (
	ErrEntryNotFound          = errors.New("entry not found")
	ErrEntryConflict          = errors.New("entry conflict: membership already registered for this event")
	ErrEntryMembershipInvalid = errors.New("entry membership conflict or invalid")
	ErrEntryEventInvalid      = errors.New("entry event conflict or invalid")
)

type EntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Entry, error)
	FindByMembershipAndEvent(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, eventID int) (*models.Entry, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error)
	ListUnresolved(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error)
	ListForSettlement(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error)
	SetSignedOutAt(ctx context.Context, exec SQLExecutor, id int, signedOutAt *time.Time) error
	UpdatePlacement(ctx context.Context, exec SQLExecutor, id int, placement int) error
	ClearPlacements(ctx context.Context, exec SQLExecutor, eventID int) error
	IncrementRebuys(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEntryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO entries (membership_id, event_id, rebuys)
		VALUES ($1, $2, 0)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, entry.MembershipID, entry.EventID).
		Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "entries_membership_id_event_id_key" {
					return ErrEntryConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "entries_membership_id_fkey":
					return ErrEntryMembershipInvalid
				case "entries_event_id_fkey":
					return ErrEntryEventInvalid
				}
			}
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

func (r *postgresEntryRepository) scanEntry(rowScanner interface{ Scan(...interface{}) error }) (*models.Entry, error) {
	e := &models.Entry{}
	err := rowScanner.Scan(
		&e.ID, &e.MembershipID, &e.EventID, &e.SignedOutAt,
		&e.Placement, &e.Rebuys, &e.CreatedAt, &e.FirstName, &e.LastName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

const entrySelectSQL = `
	SELECT e.id, e.membership_id, e.event_id, e.signed_out_at,
	       e.placement, e.rebuys, e.created_at,
	       COALESCE(m.first_name, '') AS first_name, COALESCE(m.last_name, '') AS last_name
	FROM entries e
	JOIN memberships ms ON e.membership_id = ms.id
	JOIN members m ON ms.member_id = m.id`

func (r *postgresEntryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := entrySelectSQL + ` WHERE e.id = $1`
	return r.scanEntry(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresEntryRepository) FindByMembershipAndEvent(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, eventID int) (*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := entrySelectSQL + ` WHERE e.membership_id = $1 AND e.event_id = $2`
	return r.scanEntry(executor.QueryRowContext(ctx, query, membershipID, eventID))
}

func (r *postgresEntryRepository) listByQuery(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Entry, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		e, errScan := r.scanEntry(rows)
		if errScan != nil {
			return nil, errScan
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

func (r *postgresEntryRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := entrySelectSQL + ` WHERE e.event_id = $1 ORDER BY e.created_at ASC, e.id ASC`
	return r.listByQuery(ctx, executor, query, eventID)
}

func (r *postgresEntryRepository) ListUnresolved(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := entrySelectSQL + ` WHERE e.event_id = $1 AND e.signed_out_at IS NULL ORDER BY e.created_at ASC, e.id ASC`
	return r.listByQuery(ctx, executor, query, eventID)
}

// ListForSettlement orders entries most-recently-signed-out first, which is the
// finishing order: the last player standing signs out last and takes 1st place.
// Unresolved entries (NULL signed_out_at) sort first so the settlement
// precondition check sees them immediately.
func (r *postgresEntryRepository) ListForSettlement(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Entry, error) {
	executor := r.getExecutor(exec)
	query := entrySelectSQL + ` WHERE e.event_id = $1 ORDER BY e.signed_out_at DESC NULLS FIRST, e.id ASC`
	return r.listByQuery(ctx, executor, query, eventID)
}

func (r *postgresEntryRepository) SetSignedOutAt(ctx context.Context, exec SQLExecutor, id int, signedOutAt *time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE entries SET signed_out_at = $1 WHERE id = $2`, signedOutAt, id)
	if err != nil {
		return fmt.Errorf("failed to update entry sign-out time: %w", err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) UpdatePlacement(ctx context.Context, exec SQLExecutor, id int, placement int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE entries SET placement = $1 WHERE id = $2`, placement, id)
	if err != nil {
		return fmt.Errorf("failed to update entry placement: %w", err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) ClearPlacements(ctx context.Context, exec SQLExecutor, eventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `UPDATE entries SET placement = NULL WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to clear placements for event %d: %w", eventID, err)
	}
	return nil
}

func (r *postgresEntryRepository) IncrementRebuys(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE entries SET rebuys = rebuys + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment entry rebuys: %w", err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}
