package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
)

// DB is the store adapter capability set the repository needs. Both
// *pgxpool.Pool and pgxmock's pool satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres unique_violation; raised by the users.secret and credentials
// unique constraints.
const uniqueViolationCode = "23505"

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// withTx runs fn inside a transaction. Statement and commit failures roll
// back before the error surfaces; a rollback failure is wrapped around the
// original error instead of replacing or hiding it.
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (while handling: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (while handling commit error: %w)", rbErr, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) CredentialsByToken(ctx context.Context, apiKey string) ([]domain.Credential, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, secret, token, revoked
		FROM credentials
		WHERE token = $1
	`, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.ID, &c.Secret, &c.Token, &c.Revoked); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	return creds, nil
}

func (r *Repository) ActiveCredential(ctx context.Context, secret string) (*domain.Credential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, secret, token, revoked
		FROM credentials
		WHERE secret = $1 AND revoked = FALSE
		LIMIT 1
	`, secret)

	var c domain.Credential
	err := row.Scan(&c.ID, &c.Secret, &c.Token, &c.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active credential: %w", err)
	}

	return &c, nil
}

func (r *Repository) InsertCredential(ctx context.Context, secret, apiKey string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO credentials (secret, token, revoked)
		VALUES ($1, $2, FALSE)
	`, secret, apiKey)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	return nil
}

func (r *Repository) RotateCredential(ctx context.Context, oldKey, secret, newKey string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE credentials SET revoked = TRUE WHERE token = $1
		`, oldKey); err != nil {
			return fmt.Errorf("failed to revoke api key: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO credentials (secret, token, revoked)
			VALUES ($1, $2, FALSE)
		`, secret, newKey); err != nil {
			return fmt.Errorf("failed to insert replacement api key: %w", err)
		}

		return nil
	})
}

func (r *Repository) SecretInUse(ctx context.Context, secret string) (bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM credentials WHERE secret = $1)
	`, secret)

	var inUse bool
	if err := row.Scan(&inUse); err != nil {
		return false, fmt.Errorf("failed to check secret usage: %w", err)
	}

	return inUse, nil
}

func (r *Repository) UserBySecret(ctx context.Context, secret string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, secret, session_pointer
		FROM users
		WHERE secret = $1
	`, secret)

	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Secret, &u.SessionPointer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (r *Repository) AllUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, session_pointer
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.SessionPointer); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

func (r *Repository) AllUsersWithStatus(ctx context.Context) ([]domain.UserStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.first_name, u.last_name, s.session_id, s.start_time, s.end_time
		FROM users u
		LEFT JOIN sessions s ON u.session_pointer = s.session_id
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with status: %w", err)
	}
	defer rows.Close()

	var statuses []domain.UserStatus
	for rows.Next() {
		var st domain.UserStatus
		var sessionID, startTime, endTime *int64
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &sessionID, &startTime, &endTime); err != nil {
			return nil, fmt.Errorf("failed to scan user status: %w", err)
		}
		if sessionID != nil && startTime != nil {
			st.Session = &domain.Session{
				ID:        *sessionID,
				StartTime: *startTime,
				EndTime:   endTime,
			}
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user statuses: %w", err)
	}

	return statuses, nil
}

func (r *Repository) CreateUser(ctx context.Context, firstName, lastName, secret, apiKey string) (*domain.User, error) {
	user := &domain.User{
		FirstName: firstName,
		LastName:  lastName,
		Secret:    secret,
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, secret, session_pointer)
			VALUES ($1, $2, $3, NULL)
			RETURNING id
		`, firstName, lastName, secret)
		if err := row.Scan(&user.ID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return apperror.ErrPasswordInUse
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO credentials (secret, token, revoked)
			VALUES ($1, $2, FALSE)
		`, secret, apiKey); err != nil {
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
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET secret = $1 WHERE secret = $2
		`, newSecret, oldSecret); err != nil {
			return fmt.Errorf("failed to update user secret: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE credentials SET secret = $1 WHERE secret = $2
		`, newSecret, oldSecret); err != nil {
			return fmt.Errorf("failed to update credential secrets: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE sessions SET secret = $1 WHERE secret = $2
		`, newSecret, oldSecret); err != nil {
			return fmt.Errorf("failed to update session secrets: %w", err)
		}

		return nil
	})
}

func (r *Repository) DeleteUser(ctx context.Context, secret string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM users WHERE secret = $1
		`, secret)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperror.ErrAlreadyDeleted
		}

		// Sessions are kept on purpose as a historical record.
		if _, err := tx.Exec(ctx, `
			DELETE FROM credentials WHERE secret = $1
		`, secret); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		return nil
	})
}

func (r *Repository) LatestSession(ctx context.Context, secret string) (*domain.Session, error) {
	// Resolves through the user's session pointer. An unset or dangling
	// pointer yields no row.
	row := r.db.QueryRow(ctx, `
		SELECT s.session_id, s.secret, s.start_time, s.end_time
		FROM users u
		JOIN sessions s ON u.session_pointer = s.session_id
		WHERE u.secret = $1
	`, secret)

	var s domain.Session
	err := row.Scan(&s.ID, &s.Secret, &s.StartTime, &s.EndTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}

	return &s, nil
}

func (r *Repository) SessionsBySecret(ctx context.Context, secret string) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, secret, start_time, end_time
		FROM sessions
		WHERE secret = $1
		ORDER BY session_id
	`, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *Repository) InsertSession(ctx context.Context, secret string, startTime int64, endTime *int64, updatePointer bool) (*domain.Session, error) {
	session := &domain.Session{
		Secret:    secret,
		StartTime: startTime,
		EndTime:   endTime,
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO sessions (secret, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING session_id
	`, secret, startTime, endTime)
	if err := row.Scan(&session.ID); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if updatePointer {
		if _, err := r.db.Exec(ctx, `
			UPDATE users SET session_pointer = $1 WHERE secret = $2
		`, session.ID, secret); err != nil {
			return nil, fmt.Errorf("failed to update session pointer: %w", err)
		}
	}

	return session, nil
}

func (r *Repository) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET start_time = $1, end_time = $2 WHERE session_id = $3
	`, session.StartTime, session.EndTime, session.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE session_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}

func (r *Repository) ListSessions(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, secret, start_time, end_time
		FROM sessions
		ORDER BY session_id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.Secret, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	return sessions, nil
}
