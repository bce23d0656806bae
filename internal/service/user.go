package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sinatle/donation/internal/domain"
)

// UserService exposes profile reads and updates for authenticated users.
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update changes the profile name fields; blank fields keep their
	// current value.
	Update(ctx context.Context, id uuid.UUID, name, lastName string) (*domain.User, error)
}

type userService struct {
	users  UserStore
	logger *slog.Logger
}

func NewUserService(users UserStore, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{users: users, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get_by_id"

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "user.get_by_email"

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, name, lastName string) (*domain.User, error) {
	const op = "user.update"

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to look up user")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.Update(name, lastName)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, domain.Internal(err, op, "failed to persist profile update")
	}

	s.logger.Info("profile updated", slog.String("user_id", user.ID.String()))
	return user, nil
}
