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

type CreateSemesterInput struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type SemesterService interface {
	CreateSemester(ctx context.Context, input CreateSemesterInput) (*models.Semester, error)
	GetSemesterByID(ctx context.Context, id uuid.UUID) (*models.Semester, error)
	ListSemesters(ctx context.Context) ([]*models.Semester, error)
}

type semesterService struct {
	semesterRepo repositories.SemesterRepository
}

func NewSemesterService(semesterRepo repositories.SemesterRepository) SemesterService {
	return &semesterService{semesterRepo: semesterRepo}
}

func (s *semesterService) CreateSemester(ctx context.Context, input CreateSemesterInput) (*models.Semester, error) {
	if input.Name == "" {
		return nil, ErrSemesterNameRequired
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrSemesterInvalidDateRange
	}

	semester := &models.Semester{
		ID:        uuid.New(),
		Name:      input.Name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}

	if err := s.semesterRepo.Create(ctx, semester); err != nil {
		if errors.Is(err, repositories.ErrSemesterNameConflict) {
			return nil, ErrSemesterNameConflict
		}
		return nil, fmt.Errorf("failed to create semester: %w", err)
	}
	return semester, nil
}

func (s *semesterService) GetSemesterByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	semester, err := s.semesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("failed to load semester %s: %w", id, err)
	}
	return semester, nil
}

func (s *semesterService) ListSemesters(ctx context.Context) ([]*models.Semester, error) {
	semesters, err := s.semesterRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	return semesters, nil
}
