package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlearn-dev/lms-admin-api/internal/dto"
	"github.com/openlearn-dev/lms-admin-api/internal/models"
	appErrors "github.com/openlearn-dev/lms-admin-api/pkg/errors"
)

type userStore interface {
	Users(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService manages accounts through the upstream backend. Credentials
// never pass through the gateway; the backend handles authentication.
type UserService struct {
	store  userStore
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(store userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, logger: logger}
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Create registers an account.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	created, err := s.store.CreateUser(ctx, models.User{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Role:     models.UserRole(req.Role),
		Active:   true,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", created.ID), zap.String("role", req.Role))
	return created, nil
}

// Update applies a partial account update. The current record is loaded first
// so absent fields keep their values.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	var current *models.User
	for i := range users {
		if users[i].ID == id {
			current = &users[i]
			break
		}
	}
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	next := *current
	if req.Email != nil {
		next.Email = *req.Email
	}
	if req.Username != nil {
		next.Username = *req.Username
	}
	if req.FullName != nil {
		next.FullName = *req.FullName
	}
	if req.Role != nil {
		next.Role = models.UserRole(*req.Role)
	}
	if req.Active != nil {
		next.Active = *req.Active
	}
	return s.store.UpdateUser(ctx, id, next)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
