package domain

//go:generate mockgen -destination=../../mocks/mock_repository.go -package=mocks github.com/malee31/TimesheetManagementServer/internal/timesheet/domain Repository

import "context"

// Repository is the store adapter the services are written against. Two
// implementations exist: raw SQL over pgx and an ORM-backed one over GORM,
// selected at construction time. Multi-statement methods run inside a single
// transaction; a failure anywhere rolls the whole operation back before the
// error is returned.
type Repository interface {
	// Credentials
	CredentialsByToken(ctx context.Context, apiKey string) ([]Credential, error)
	ActiveCredential(ctx context.Context, secret string) (*Credential, error)
	InsertCredential(ctx context.Context, secret, apiKey string) error
	// RotateCredential revokes oldKey and inserts newKey for secret in one
	// transaction. A failed rotation leaves the old key valid.
	RotateCredential(ctx context.Context, oldKey, secret, newKey string) error
	SecretInUse(ctx context.Context, secret string) (bool, error)

	// Users
	UserBySecret(ctx context.Context, secret string) (*User, error)
	AllUsers(ctx context.Context) ([]User, error)
	AllUsersWithStatus(ctx context.Context) ([]UserStatus, error)
	// CreateUser inserts the user row and its initial credential in one
	// transaction and returns the persisted row.
	CreateUser(ctx context.Context, firstName, lastName, secret, apiKey string) (*User, error)
	// UpdateSecret re-keys the user row and every credential and session row
	// from oldSecret to newSecret in one transaction.
	UpdateSecret(ctx context.Context, oldSecret, newSecret string) error
	// DeleteUser removes the user row and its credentials in one
	// transaction. Session rows are intentionally retained as history.
	DeleteUser(ctx context.Context, secret string) error

	// Sessions
	LatestSession(ctx context.Context, secret string) (*Session, error)
	SessionsBySecret(ctx context.Context, secret string) ([]Session, error)
	InsertSession(ctx context.Context, secret string, startTime int64, endTime *int64, updatePointer bool) (*Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id int64) error
	ListSessions(ctx context.Context, limit, offset int) ([]Session, error)
}
