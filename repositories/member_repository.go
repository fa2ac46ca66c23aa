package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/uwpokerclub/clubhouse/models"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberConflict      = errors.New("member already exists")
	ErrMemberEmailConflict = errors.New("email address is already in use")
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id int) (*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, first_name, last_name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ID, member.FirstName, member.LastName, member.Email,
	).Scan(&member.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "members_pkey":
				return ErrMemberConflict
			case "members_email_key":
				return ErrMemberEmailConflict
			}
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id int) (*models.Member, error) {
	query := `SELECT id, first_name, last_name, email, created_at FROM members WHERE id = $1`

	m := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMemberRepository) List(ctx context.Context) ([]*models.Member, error) {
	query := `SELECT id, first_name, last_name, email, created_at FROM members ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}
