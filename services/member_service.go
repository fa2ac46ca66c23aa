package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

type CreateMemberInput struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type MemberService interface {
	CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error)
	GetMemberByID(ctx context.Context, id int) (*models.Member, error)
	ListMembers(ctx context.Context) ([]*models.Member, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
}

func NewMemberService(memberRepo repositories.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

func (s *memberService) CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrMemberNameRequired
	}

	member := &models.Member{
		ID:        input.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMemberConflict):
			return nil, ErrMemberConflict
		case errors.Is(err, repositories.ErrMemberEmailConflict):
			return nil, ErrMemberEmailConflict
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetMemberByID(ctx context.Context, id int) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member %d: %w", id, err)
	}
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context) ([]*models.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
