package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

type CreateMembershipInput struct {
	MemberID   int       `json:"member_id"`
	SemesterID uuid.UUID `json:"semester_id"`
}

type MembershipService interface {
	CreateMembership(ctx context.Context, input CreateMembershipInput) (*models.Membership, error)
	GetMembershipByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	ListMembershipsBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Membership, error)
}

type membershipService struct {
	membershipRepo repositories.MembershipRepository
}

func NewMembershipService(membershipRepo repositories.MembershipRepository) MembershipService {
	return &membershipService{membershipRepo: membershipRepo}
}

func (s *membershipService) CreateMembership(ctx context.Context, input CreateMembershipInput) (*models.Membership, error) {
	membership := &models.Membership{
		ID:         uuid.New(),
		MemberID:   input.MemberID,
		SemesterID: input.SemesterID,
	}

	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMembershipConflict):
			return nil, ErrMembershipConflict
		case errors.Is(err, repositories.ErrMembershipMemberInvalid):
			return nil, ErrMemberNotFound
		case errors.Is(err, repositories.ErrMembershipSemesterInvalid):
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return membership, nil
}

func (s *membershipService) GetMembershipByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	membership, err := s.membershipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to load membership %s: %w", id, err)
	}
	return membership, nil
}

func (s *membershipService) ListMembershipsBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Membership, error) {
	memberships, err := s.membershipRepo.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships for semester %s: %w", semesterID, err)
	}
	return memberships, nil
}
