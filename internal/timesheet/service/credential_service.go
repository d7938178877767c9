package service

import (
	"context"
	"log/slog"

	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"github.com/malee31/TimesheetManagementServer/pkg/token"
)

// CredentialService owns the api key lifecycle: lookup, exchange, and
// rotation. A credential only ever moves from active to revoked, and only
// Rotate performs that transition.
type CredentialService struct {
	repo domain.Repository
	log  *slog.Logger
}

func NewCredentialService(repo domain.Repository, log *slog.Logger) *CredentialService {
	return &CredentialService{repo: repo, log: log}
}

// Lookup returns every credential row matching apiKey. Tokens are unique by
// constraint, so more than one match means the data has been tampered with;
// it is logged and returned as-is rather than corrected.
func (s *CredentialService) Lookup(ctx context.Context, apiKey string) ([]domain.Credential, error) {
	creds, err := s.repo.CredentialsByToken(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if len(creds) > 1 {
		s.log.Warn("multiple credential rows share the same api key", "api_key_count", len(creds))
	}

	return creds, nil
}

// Exchange trades a secret for its active api key. A user should always have
// exactly one active credential; if none exists the store was modified out
// from under us, so a replacement is minted and persisted.
func (s *CredentialService) Exchange(ctx context.Context, secret string) (string, error) {
	cred, err := s.repo.ActiveCredential(ctx, secret)
	if err != nil {
		return "", err
	}
	if cred != nil {
		return cred.Token, nil
	}

	s.log.Warn("an api key was minted during an exchange; this should only happen if the database was modified directly")
	newKey := token.NewUserKey()
	if err := s.repo.InsertCredential(ctx, secret, newKey); err != nil {
		return "", err
	}

	return newKey, nil
}

// Rotate revokes oldKey and issues a replacement for the same secret in one
// transaction. Rotating a dead key fails with already_revoked; a failed
// rotation is a no-op and the old key stays valid.
func (s *CredentialService) Rotate(ctx context.Context, oldKey string) (string, error) {
	creds, err := s.Lookup(ctx, oldKey)
	if err != nil {
		return "", err
	}
	if len(creds) == 0 {
		return "", apperror.ErrUserNotFound
	}
	if creds[0].Revoked {
		return "", apperror.ErrAlreadyRevoked
	}

	newKey := token.NewUserKey()
	if err := s.repo.RotateCredential(ctx, oldKey, creds[0].Secret, newKey); err != nil {
		return "", err
	}

	return newKey, nil
}
