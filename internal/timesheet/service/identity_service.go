package service

import (
	"context"
	"log/slog"
	"strings"

	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/dto"
	"github.com/malee31/TimesheetManagementServer/pkg/token"
)

// IdentityService owns user rows and coordinates the cascades that keep
// credentials and sessions keyed to the right secret.
type IdentityService struct {
	repo domain.Repository
	log  *slog.Logger
}

func NewIdentityService(repo domain.Repository, log *slog.Logger) *IdentityService {
	return &IdentityService{repo: repo, log: log}
}

// CreateUser validates the input, then inserts the user row and mints its
// initial credential in one transaction. Succeeds deterministically for
// well-formed input.
func (s *IdentityService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	secret := strings.TrimSpace(input.Password)
	if firstName == "" || lastName == "" || secret == "" {
		return nil, apperror.ErrInvalidUserData
	}

	return s.repo.CreateUser(ctx, firstName, lastName, secret, token.NewUserKey())
}

// ChangeSecret re-keys the user and every credential and session row from
// oldSecret to newSecret. A collision with another user's secret fails with
// password_in_use before anything is mutated.
func (s *IdentityService) ChangeSecret(ctx context.Context, oldSecret, newSecret string) error {
	inUse, err := s.repo.SecretInUse(ctx, newSecret)
	if err != nil {
		return err
	}
	if inUse {
		return apperror.ErrPasswordInUse
	}

	return s.repo.UpdateSecret(ctx, oldSecret, newSecret)
}

// DeleteUser removes the user row and its credentials. Deleting a missing
// user fails with already_deleted and attempts no cleanup. Session rows are
// retained as a historical record.
func (s *IdentityService) DeleteUser(ctx context.Context, secret string) error {
	return s.repo.DeleteUser(ctx, secret)
}

// User fetches a single user by secret.
func (s *IdentityService) User(ctx context.Context, secret string) (*domain.User, error) {
	user, err := s.repo.UserBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	return user, nil
}

// UserWithStatus fetches a single user joined with the session their pointer
// references, or a nil session when the pointer is unset or dangling.
func (s *IdentityService) UserWithStatus(ctx context.Context, secret string) (*domain.UserStatus, error) {
	user, err := s.User(ctx, secret)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestSession(ctx, secret)
	if err != nil {
		return nil, err
	}

	return &domain.UserStatus{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Session:   latest,
	}, nil
}

func (s *IdentityService) AllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		s.log.Warn("no users in the database")
	}

	return users, nil
}

func (s *IdentityService) AllUsersWithStatus(ctx context.Context) ([]domain.UserStatus, error) {
	users, err := s.repo.AllUsersWithStatus(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		s.log.Warn("no users in the database")
	}

	return users, nil
}
