// Package gormstore is the ORM-backed store implementation. It is
// interchangeable with the raw-SQL pgx repository; both satisfy
// domain.Repository and the backend is picked at construction time.
// The schema is owned by the goose migrations, so queries run against the
// same tables the pgx backend uses.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"gorm.io/gorm"
)

// Postgres unique_violation, surfaced by the pgx driver underneath GORM.
const uniqueViolationCode = "23505"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type credentialRow struct {
	ID      int64
	Secret  string
	Token   string
	Revoked bool
}

type sessionRow struct {
	SessionID int64
	Secret    string
	StartTime int64
	EndTime   *int64
}

type userRow struct {
	ID             int64
	FirstName      string
	LastName       string
	Secret         string
	SessionPointer *int64
}

func (r *Repository) CredentialsByToken(ctx context.Context, apiKey string) ([]domain.Credential, error) {
	var rows []credentialRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, secret, token, revoked FROM credentials WHERE token = ?`, apiKey).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	creds := make([]domain.Credential, 0, len(rows))
	for _, row := range rows {
		creds = append(creds, domain.Credential(row))
	}
	if len(creds) == 0 {
		return nil, nil
	}

	return creds, nil
}

func (r *Repository) ActiveCredential(ctx context.Context, secret string) (*domain.Credential, error) {
	var rows []credentialRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, secret, token, revoked FROM credentials WHERE secret = ? AND revoked = FALSE LIMIT 1`, secret).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active credential: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cred := domain.Credential(rows[0])

	return &cred, nil
}

func (r *Repository) InsertCredential(ctx context.Context, secret, apiKey string) error {
	err := r.db.WithContext(ctx).
		Exec(`INSERT INTO credentials (secret, token, revoked) VALUES (?, ?, FALSE)`, secret, apiKey).Error
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	return nil
}

func (r *Repository) RotateCredential(ctx context.Context, oldKey, secret, newKey string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE credentials SET revoked = TRUE WHERE token = ?`, oldKey).Error; err != nil {
			return fmt.Errorf("failed to revoke api key: %w", err)
		}
		if err := tx.Exec(`INSERT INTO credentials (secret, token, revoked) VALUES (?, ?, FALSE)`, secret, newKey).Error; err != nil {
			return fmt.Errorf("failed to insert replacement api key: %w", err)
		}

		return nil
	})
}

func (r *Repository) SecretInUse(ctx context.Context, secret string) (bool, error) {
	var inUse bool
	err := r.db.WithContext(ctx).
		Raw(`SELECT EXISTS (SELECT 1 FROM credentials WHERE secret = ?)`, secret).
		Scan(&inUse).Error
	if err != nil {
		return false, fmt.Errorf("failed to check secret usage: %w", err)
	}

	return inUse, nil
}

func (r *Repository) UserBySecret(ctx context.Context, secret string) (*domain.User, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, first_name, last_name, secret, session_pointer FROM users WHERE secret = ?`, secret).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	user := domain.User(rows[0])

	return &user, nil
}

func (r *Repository) AllUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, first_name, last_name, '' AS secret, session_pointer FROM users ORDER BY id`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User(row))
	}

	return users, nil
}

func (r *Repository) AllUsersWithStatus(ctx context.Context) ([]domain.UserStatus, error) {
	type statusRow struct {
		ID        int64
		FirstName string
		LastName  string
		SessionID *int64
		StartTime *int64
		EndTime   *int64
	}

	var rows []statusRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT u.id, u.first_name, u.last_name, s.session_id, s.start_time, s.end_time
		     FROM users u LEFT JOIN sessions s ON u.session_pointer = s.session_id
		     ORDER BY u.id`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with status: %w", err)
	}

	statuses := make([]domain.UserStatus, 0, len(rows))
	for _, row := range rows {
		st := domain.UserStatus{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
		}
		if row.SessionID != nil && row.StartTime != nil {
			st.Session = &domain.Session{
				ID:        *row.SessionID,
				StartTime: *row.StartTime,
				EndTime:   row.EndTime,
			}
		}
		statuses = append(statuses, st)
	}

	return statuses, nil
}

func (r *Repository) CreateUser(ctx context.Context, firstName, lastName, secret, apiKey string) (*domain.User, error) {
	user := &domain.User{
		FirstName: firstName,
		LastName:  lastName,
		Secret:    secret,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`INSERT INTO users (first_name, last_name, secret, session_pointer)
		                  VALUES (?, ?, ?, NULL) RETURNING id`, firstName, lastName, secret).
			Scan(&user.ID).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return apperror.ErrPasswordInUse
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		if err := tx.Exec(`INSERT INTO credentials (secret, token, revoked) VALUES (?, ?, FALSE)`, secret, apiKey).Error; err != nil {
			return fmt.Errorf("failed to insert initial credential: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) UpdateSecret(ctx context.Context, oldSecret, newSecret string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE users SET secret = ? WHERE secret = ?`, newSecret, oldSecret).Error; err != nil {
			return fmt.Errorf("failed to update user secret: %w", err)
		}
		if err := tx.Exec(`UPDATE credentials SET secret = ? WHERE secret = ?`, newSecret, oldSecret).Error; err != nil {
			return fmt.Errorf("failed to update credential secrets: %w", err)
		}
		if err := tx.Exec(`UPDATE sessions SET secret = ? WHERE secret = ?`, newSecret, oldSecret).Error; err != nil {
			return fmt.Errorf("failed to update session secrets: %w", err)
		}

		return nil
	})
}

func (r *Repository) DeleteUser(ctx context.Context, secret string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`DELETE FROM users WHERE secret = ?`, secret)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.ErrAlreadyDeleted
		}

		// Sessions are kept on purpose as a historical record.
		if err := tx.Exec(`DELETE FROM credentials WHERE secret = ?`, secret).Error; err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		return nil
	})
}

func (r *Repository) LatestSession(ctx context.Context, secret string) (*domain.Session, error) {
	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT s.session_id, s.secret, s.start_time, s.end_time
		     FROM users u JOIN sessions s ON u.session_pointer = s.session_id
		     WHERE u.secret = ?`, secret).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return sessionFromRow(rows[0]), nil
}

func (r *Repository) SessionsBySecret(ctx context.Context, secret string) ([]domain.Session, error) {
	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT session_id, secret, start_time, end_time FROM sessions WHERE secret = ? ORDER BY session_id`, secret).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user: %w", err)
	}

	return sessionsFromRows(rows), nil
}

func (r *Repository) InsertSession(ctx context.Context, secret string, startTime int64, endTime *int64, updatePointer bool) (*domain.Session, error) {
	session := &domain.Session{
		Secret:    secret,
		StartTime: startTime,
		EndTime:   endTime,
	}

	err := r.db.WithContext(ctx).
		Raw(`INSERT INTO sessions (secret, start_time, end_time) VALUES (?, ?, ?) RETURNING session_id`,
			secret, startTime, endTime).
		Scan(&session.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if updatePointer {
		if err := r.db.WithContext(ctx).
			Exec(`UPDATE users SET session_pointer = ? WHERE secret = ?`, session.ID, secret).Error; err != nil {
			return nil, fmt.Errorf("failed to update session pointer: %w", err)
		}
	}

	return session, nil
}

func (r *Repository) UpdateSession(ctx context.Context, session *domain.Session) error {
	err := r.db.WithContext(ctx).
		Exec(`UPDATE sessions SET start_time = ?, end_time = ? WHERE session_id = ?`,
			session.StartTime, session.EndTime, session.ID).Error
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (r *Repository) ListSessions(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Raw(`SELECT session_id, secret, start_time, end_time FROM sessions ORDER BY session_id LIMIT ? OFFSET ?`, limit, offset).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessionsFromRows(rows), nil
}

func sessionFromRow(row sessionRow) *domain.Session {
	return &domain.Session{
		ID:        row.SessionID,
		Secret:    row.Secret,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
	}
}

func sessionsFromRows(rows []sessionRow) []domain.Session {
	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, *sessionFromRow(row))
	}

	return sessions
}
