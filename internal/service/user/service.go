package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

// ErrMissingContact is returned when a user has neither an email address nor
// a phone number.
var ErrMissingContact = errors.New("either email or number is required")

//go:generate mockgen -source=service.go -destination=../../mocks/service/user/mock.go -package=mocks

type userRepository interface {
	CreateUser(ctx context.Context, user model.User) (uuid.UUID, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
}

// Service manages the notification recipient registry.
type Service struct {
	repo userRepository
}

// NewService creates a user Service.
func NewService(repo userRepository) *Service {
	return &Service{repo: repo}
}

// CreateUser registers a new recipient. At least one contact field must be set.
func (s *Service) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	if user.Email == "" && user.Number == "" {
		return uuid.Nil, ErrMissingContact
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}

// GetAllUsers returns every registered recipient.
func (s *Service) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all users: %w", err)
	}

	return users, nil
}
