package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

type DashboardService interface {
	GetSemesterDashboard(ctx context.Context, semesterID uuid.UUID) (*models.SemesterDashboard, error)
}

type dashboardService struct {
	semesterRepo   repositories.SemesterRepository
	membershipRepo repositories.MembershipRepository
	eventRepo      repositories.EventRepository
	rankingRepo    repositories.RankingRepository
}

func NewDashboardService(
	semesterRepo repositories.SemesterRepository,
	membershipRepo repositories.MembershipRepository,
	eventRepo repositories.EventRepository,
	rankingRepo repositories.RankingRepository,
) DashboardService {
	return &dashboardService{
		semesterRepo:   semesterRepo,
		membershipRepo: membershipRepo,
		eventRepo:      eventRepo,
		rankingRepo:    rankingRepo,
	}
}

// GetSemesterDashboard fans the four independent aggregate queries out
// concurrently; each goroutine writes a distinct field of the result.
func (s *dashboardService) GetSemesterDashboard(ctx context.Context, semesterID uuid.UUID) (*models.SemesterDashboard, error) {
	if _, err := s.semesterRepo.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("failed to load semester %s: %w", semesterID, err)
	}

	var dashboard models.SemesterDashboard
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.membershipRepo.CountBySemester(gCtx, semesterID)
		if err != nil {
			return fmt.Errorf("failed to count memberships: %w", err)
		}
		dashboard.Memberships = count
		return nil
	})
	g.Go(func() error {
		count, err := s.eventRepo.CountBySemester(gCtx, semesterID, nil)
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}
		dashboard.EventsTotal = count
		return nil
	})
	g.Go(func() error {
		ended := models.EventStateEnded
		count, err := s.eventRepo.CountBySemester(gCtx, semesterID, &ended)
		if err != nil {
			return fmt.Errorf("failed to count ended events: %w", err)
		}
		dashboard.EventsEnded = count
		return nil
	})
	g.Go(func() error {
		total, err := s.rankingRepo.SumPointsBySemester(gCtx, semesterID)
		if err != nil {
			return fmt.Errorf("failed to sum awarded points: %w", err)
		}
		dashboard.PointsAwarded = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
