package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/repositories"
)

const sessionTTL = 24 * time.Hour

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (string, *models.Admin, error)
}

type authService struct {
	adminRepo repositories.AdminRepository
	jwtSecret []byte
}

func NewAuthService(adminRepo repositories.AdminRepository, jwtSecret string) AuthService {
	return &authService{
		adminRepo: adminRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login verifies the admin's credentials and issues a signed session token.
// A missing admin and a wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *models.Admin, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return "", nil, ErrAuthInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load admin %q: %w", input.Username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return "", nil, ErrAuthInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"username": admin.Username,
		"role":     string(admin.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(sessionTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, admin, nil
}
