package service

import (
	"context"
	"log/slog"
	"time"

	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
)

// SessionService tracks sign-in/sign-out sessions and keeps each user's
// latest-session pointer current. Whether a user counts as signed in is
// derived entirely from their latest session: non-nil with no end time.
type SessionService struct {
	repo domain.Repository
	log  *slog.Logger
}

func NewSessionService(repo domain.Repository, log *slog.Logger) *SessionService {
	return &SessionService{repo: repo, log: log}
}

// Latest returns the session the user's pointer references, or nil when the
// pointer is unset or dangling.
func (s *SessionService) Latest(ctx context.Context, secret string) (*domain.Session, error) {
	return s.repo.LatestSession(ctx, secret)
}

// Create inserts a session row. When updatePointer is set, the owning user's
// session pointer is moved to the new row before Create returns.
func (s *SessionService) Create(ctx context.Context, secret string, startTime int64, endTime *int64, updatePointer bool) (*domain.Session, error) {
	return s.repo.InsertSession(ctx, secret, startTime, endTime, updatePointer)
}

// Patch updates the start and end times of the row identified by session.ID.
// Ownership is not re-validated; callers must pass a session obtained from a
// trusted source.
func (s *SessionService) Patch(ctx context.Context, session *domain.Session) error {
	return s.repo.UpdateSession(ctx, session)
}

// DeleteByID removes a session row. Deleting the session a user's pointer
// references leaves that pointer dangling; it is not cleared here.
func (s *SessionService) DeleteByID(ctx context.Context, id int64) error {
	return s.repo.DeleteSession(ctx, id)
}

// ListForSecret returns the user's full session history.
func (s *SessionService) ListForSecret(ctx context.Context, secret string) ([]domain.Session, error) {
	sessions, err := s.repo.SessionsBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		s.log.Warn("no sessions for user")
		return nil, nil
	}

	return sessions, nil
}

// ListAll returns one page of all sessions across users, ordered by id.
// Pages are 1-based.
func (s *SessionService) ListAll(ctx context.Context, count, page int) ([]domain.Session, error) {
	offset := (page - 1) * count

	return s.repo.ListSessions(ctx, count, offset)
}

// SignIn starts a new session for the user unless one is already ongoing, in
// which case it reports already_signed_in without touching any rows.
func (s *SessionService) SignIn(ctx context.Context, secret string) (*domain.Session, string, error) {
	latest, err := s.Latest(ctx, secret)
	if err != nil {
		return nil, "", err
	}
	if latest.Ongoing() {
		return nil, apperror.WarningAlreadySignedIn, nil
	}

	session, err := s.Create(ctx, secret, time.Now().UnixMilli(), nil, true)
	if err != nil {
		return nil, "", err
	}

	return session, "", nil
}

// SignOut ends the ongoing session by stamping its end time. With no ongoing
// session it reports already_signed_out and mutates nothing. The returned
// session keeps its original id and start time.
func (s *SessionService) SignOut(ctx context.Context, secret string) (*domain.Session, string, error) {
	latest, err := s.Latest(ctx, secret)
	if err != nil {
		return nil, "", err
	}
	if !latest.Ongoing() {
		return nil, apperror.WarningAlreadySignedOut, nil
	}

	patched := *latest
	endTime := time.Now().UnixMilli()
	patched.EndTime = &endTime
	if err := s.Patch(ctx, &patched); err != nil {
		return nil, "", err
	}

	return &patched, "", nil
}
