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
	ErrSemesterNotFound     = errors.New("semester not found")
	ErrSemesterNameConflict = errors.New("semester name already exists")
)

type SemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error)
	List(ctx context.Context) ([]*models.Semester, error)
}

type postgresSemesterRepository struct {
	db *sql.DB
}

func NewPostgresSemesterRepository(db *sql.DB) SemesterRepository {
	return &postgresSemesterRepository{db: db}
}

func (r *postgresSemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	query := `
		INSERT INTO semesters (id, name, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		semester.ID, semester.Name, semester.StartDate, semester.EndDate,
	).Scan(&semester.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "semesters_name_key" {
				return ErrSemesterNameConflict
			}
		}
		return fmt.Errorf("failed to create semester: %w", err)
	}
	return nil
}

func (r *postgresSemesterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	query := `SELECT id, name, start_date, end_date, created_at FROM semesters WHERE id = $1`

	s := &models.Semester{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSemesterRepository) List(ctx context.Context) ([]*models.Semester, error) {
	query := `SELECT id, name, start_date, end_date, created_at FROM semesters ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	defer rows.Close()

	semesters := make([]*models.Semester, 0)
	for rows.Next() {
		s := &models.Semester{}
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan semester row: %w", err)
		}
		semesters = append(semesters, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating semester rows: %w", err)
	}
	return semesters, nil
}
