package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/uwpokerclub/clubhouse/models"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventSemesterInvalid = errors.New("event semester conflict or invalid")
	ErrEventStateConflict   = errors.New("event is not in the required state")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	// TransitionState flips the event from one state to the other only if it
	// is still in the from state, so concurrent transitions cannot both win.
	// Returns ErrEventStateConflict when the row was not in the from state.
	TransitionState(ctx context.Context, exec SQLExecutor, id int, from, to models.EventState) error
	IncrementRebuys(ctx context.Context, exec SQLExecutor, id int) error
	CountBySemester(ctx context.Context, semesterID uuid.UUID, state *models.EventState) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, format, start_date, notes, semester_id, state, rebuys)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name, event.Format, event.StartDate, event.Notes, event.SemesterID, event.State,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_semester_id_fkey" {
				return ErrEventSemesterInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) scanEvent(rowScanner interface{ Scan(...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	err := rowScanner.Scan(
		&e.ID, &e.Name, &e.Format, &e.StartDate, &e.Notes,
		&e.SemesterID, &e.State, &e.Rebuys, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, start_date, notes, semester_id, state, rebuys, created_at
		FROM events
		WHERE id = $1`
	return r.scanEvent(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresEventRepository) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error) {
	query := `
		SELECT id, name, format, start_date, notes, semester_id, state, rebuys, created_at
		FROM events
		WHERE semester_id = $1
		ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by semester: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, errScan := r.scanEvent(rows)
		if errScan != nil {
			return nil, errScan
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, format = $2, start_date = $3, notes = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		event.Name, event.Format, event.StartDate, event.Notes, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) TransitionState(ctx context.Context, exec SQLExecutor, id int, from, to models.EventState) error {
	executor := r.getExecutor(exec)
	query := `UPDATE events SET state = $1 WHERE id = $2 AND state = $3`
	result, err := executor.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to transition event state: %w", err)
	}
	// Zero affected rows means a concurrent transition (or a missing event)
	// got there first; the caller already resolved existence.
	return checkAffectedRows(result, ErrEventStateConflict)
}

func (r *postgresEventRepository) IncrementRebuys(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE events SET rebuys = rebuys + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment event rebuys: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) CountBySemester(ctx context.Context, semesterID uuid.UUID, state *models.EventState) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE semester_id = $1`
	args := []interface{}{semesterID}
	if state != nil {
		query += ` AND state = $2`
		args = append(args, *state)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events by semester: %w", err)
	}
	return count, nil
}
