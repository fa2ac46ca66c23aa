package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
	"github.com/uwpokerclub/clubhouse/storage"
)

// RankingService serves the semester standings and their CSV exports.
type RankingService interface {
	ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error)
	WriteCSV(ctx context.Context, semesterID uuid.UUID, w io.Writer) error
	UploadExport(ctx context.Context, semesterID uuid.UUID) (*storage.UploadResult, error)
}

type rankingService struct {
	rankingRepo  repositories.RankingRepository
	semesterRepo repositories.SemesterRepository
	uploader     storage.FileUploader
}

func NewRankingService(
	rankingRepo repositories.RankingRepository,
	semesterRepo repositories.SemesterRepository,
	uploader storage.FileUploader,
) RankingService {
	return &rankingService{
		rankingRepo:  rankingRepo,
		semesterRepo: semesterRepo,
		uploader:     uploader,
	}
}

func (s *rankingService) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]models.RankingRow, error) {
	if _, err := s.loadSemester(ctx, semesterID); err != nil {
		return nil, err
	}

	rankings, err := s.rankingRepo.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings for semester %s: %w", semesterID, err)
	}
	return rankings, nil
}

func (s *rankingService) WriteCSV(ctx context.Context, semesterID uuid.UUID, w io.Writer) error {
	rankings, err := s.ListBySemester(ctx, semesterID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"membership_id", "first_name", "last_name", "points", "attendance"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rankings {
		record := []string{
			row.MembershipID.String(),
			row.FirstName,
			row.LastName,
			strconv.Itoa(row.Points),
			strconv.Itoa(row.Attendance),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// UploadExport renders the semester standings as CSV and uploads them to the
// configured object store, returning the public location.
func (s *rankingService) UploadExport(ctx context.Context, semesterID uuid.UUID) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if err := s.WriteCSV(ctx, semesterID, &buf); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/rankings/%s-%d.csv", semesterID, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, "text/csv", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload rankings export for semester %s: %w", semesterID, err)
	}
	return result, nil
}

func (s *rankingService) loadSemester(ctx context.Context, semesterID uuid.UUID) (*models.Semester, error) {
	semester, err := s.semesterRepo.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("failed to load semester %s: %w", semesterID, err)
	}
	return semester, nil
}
