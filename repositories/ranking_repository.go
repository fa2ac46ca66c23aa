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
	ErrRankingNotFound          = errors.New("ranking not found")
	ErrRankingMembershipInvalid = errors.New("ranking membership conflict or invalid")
)

type RankingRepository interface {
	// ApplyPoints creates the membership's ranking row on first settlement and
	// increments it afterwards, as one atomic upsert. Attendance goes up by one
	// per settled event.
	ApplyPoints(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, points int) error
	// RevertPoints undoes one settlement's contribution. Points and attendance
	// are floored at zero.
	RevertPoints(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, points int) error
	GetByMembership(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID) (*models.Ranking, error)
	ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error)
	SumPointsBySemester(ctx context.Context, semesterID uuid.UUID) (int, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) ApplyPoints(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, points int) error {
	executor := r.getExecutor(exec)
	// Native upsert so two events settling concurrently for the same membership
	// cannot lose an increment to a read-modify-write race.
	query := `
		INSERT INTO rankings (membership_id, points, attendance, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (membership_id) DO UPDATE
		SET points = rankings.points + EXCLUDED.points,
		    attendance = rankings.attendance + 1,
		    updated_at = NOW()`

	_, err := executor.ExecContext(ctx, query, membershipID, points)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "rankings_membership_id_fkey" {
				return ErrRankingMembershipInvalid
			}
		}
		return fmt.Errorf("failed to apply points for membership %s: %w", membershipID, err)
	}
	return nil
}

func (r *postgresRankingRepository) RevertPoints(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID, points int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE rankings
		SET points = GREATEST(points - $2, 0),
		    attendance = GREATEST(attendance - 1, 0),
		    updated_at = NOW()
		WHERE membership_id = $1`

	result, err := executor.ExecContext(ctx, query, membershipID, points)
	if err != nil {
		return fmt.Errorf("failed to revert points for membership %s: %w", membershipID, err)
	}
	return checkAffectedRows(result, ErrRankingNotFound)
}

func (r *postgresRankingRepository) GetByMembership(ctx context.Context, exec SQLExecutor, membershipID uuid.UUID) (*models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, membership_id, points, attendance, updated_at
		FROM rankings
		WHERE membership_id = $1`

	ranking := &models.Ranking{}
	err := executor.QueryRowContext(ctx, query, membershipID).Scan(
		&ranking.ID, &ranking.MembershipID, &ranking.Points, &ranking.Attendance, &ranking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, err
	}
	return ranking, nil
}

func (r *postgresRankingRepository) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error) {
	query := `
		SELECT rk.membership_id, m.first_name, m.last_name, rk.points, rk.attendance
		FROM rankings rk
		JOIN memberships ms ON rk.membership_id = ms.id
		JOIN members m ON ms.member_id = m.id
		WHERE ms.semester_id = $1
		ORDER BY rk.points DESC, m.last_name ASC, m.first_name ASC, rk.membership_id ASC`

	rows, err := r.db.QueryContext(ctx, query, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings by semester: %w", err)
	}
	defer rows.Close()

	rankings := make([]models.RankingRow, 0)
	for rows.Next() {
		var row models.RankingRow
		if err := rows.Scan(&row.MembershipID, &row.FirstName, &row.LastName, &row.Points, &row.Attendance); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		rankings = append(rankings, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking rows: %w", err)
	}
	return rankings, nil
}

func (r *postgresRankingRepository) SumPointsBySemester(ctx context.Context, semesterID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(rk.points), 0)
		FROM rankings rk
		JOIN memberships ms ON rk.membership_id = ms.id
		WHERE ms.semester_id = $1`

	var total int
	if err := r.db.QueryRowContext(ctx, query, semesterID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum points by semester: %w", err)
	}
	return total, nil
}
