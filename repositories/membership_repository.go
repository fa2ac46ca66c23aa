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
	ErrMembershipNotFound        = errors.New("membership not found")
	ErrMembershipConflict        = errors.New("member already has a membership for this semester")
	ErrMembershipMemberInvalid   = errors.New("membership member conflict or invalid")
	ErrMembershipSemesterInvalid = errors.New("membership semester conflict or invalid")
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Membership, error)
	CountBySemester(ctx context.Context, semesterID uuid.UUID) (int, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (id, member_id, semester_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		membership.ID, membership.MemberID, membership.SemesterID,
	).Scan(&membership.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "memberships_member_id_semester_id_key" {
					return ErrMembershipConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "memberships_member_id_fkey":
					return ErrMembershipMemberInvalid
				case "memberships_semester_id_fkey":
					return ErrMembershipSemesterInvalid
				}
			}
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *postgresMembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT ms.id, ms.member_id, ms.semester_id, ms.created_at,
		       m.id, m.first_name, m.last_name, m.email, m.created_at
		FROM memberships ms
		JOIN members m ON ms.member_id = m.id
		WHERE ms.id = $1`

	membership := &models.Membership{}
	member := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&membership.ID, &membership.MemberID, &membership.SemesterID, &membership.CreatedAt,
		&member.ID, &member.FirstName, &member.LastName, &member.Email, &member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	membership.Member = member
	return membership, nil
}

func (r *postgresMembershipRepository) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT ms.id, ms.member_id, ms.semester_id, ms.created_at,
		       m.id, m.first_name, m.last_name, m.email, m.created_at
		FROM memberships ms
		JOIN members m ON ms.member_id = m.id
		WHERE ms.semester_id = $1
		ORDER BY m.last_name ASC, m.first_name ASC`

	rows, err := r.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships by semester: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		membership := &models.Membership{}
		member := &models.Member{}
		if err := rows.Scan(
			&membership.ID, &membership.MemberID, &membership.SemesterID, &membership.CreatedAt,
			&member.ID, &member.FirstName, &member.LastName, &member.Email, &member.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		membership.Member = member
		memberships = append(memberships, membership)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, nil
}

func (r *postgresMembershipRepository) CountBySemester(ctx context.Context, semesterID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships WHERE semester_id = $1`, semesterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships by semester: %w", err)
	}
	return count, nil
}
