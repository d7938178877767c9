// Package errors defines the typed failures surfaced by the core services.
// Each error carries a stable string code; the handler layer maps codes to
// HTTP statuses and never re-words them.
package errors

import "errors"

// Error is a business failure with a stable, caller-visible code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// Auth gate failures.
	ErrNotAuthed         = &Error{Code: "not_authed", Message: "no authorization provided"}
	ErrInvalidAuthFormat = &Error{Code: "invalid_auth_format", Message: "authorization is not in the expected format"}
	ErrInvalidAdminAuth  = &Error{Code: "invalid_admin_auth", Message: "admin key does not match"}
	ErrUserNotFound      = &Error{Code: "user_not_found", Message: "no user found for the given api key"}
	ErrAuthRevoked       = &Error{Code: "auth_revoked_by_user", Message: "api key has been revoked"}

	// Credential failures.
	ErrAlreadyRevoked = &Error{Code: "already_revoked", Message: "api key is already revoked"}

	// Identity failures.
	ErrInvalidUserData = &Error{Code: "user_data_not_nonempty_strings", Message: "first name, last name, and password must be nonempty strings"}
	ErrPasswordInUse   = &Error{Code: "password_in_use", Message: "another user already uses this password"}
	ErrAlreadyDeleted  = &Error{Code: "already_deleted", Message: "no user with this password"}

	// Session failures.
	ErrNoSessionFound       = &Error{Code: "no_session_found", Message: "no latest session for user"}
	ErrSessionNotFound      = &Error{Code: "not_found", Message: "session not found"}
	ErrNoSessionMethod      = &Error{Code: "no_session_method", Message: "no session method provided"}
	ErrInvalidSessionTime   = &Error{Code: "invalid_session_time", Message: "start time must be a positive unix millisecond timestamp"}
	ErrInvalidSessionMethod = &Error{Code: "invalid_session_method", Message: "session method must be sign_in or sign_out"}
	ErrInvalidSessionID     = &Error{Code: "invalid_session_id", Message: "session id must be a number"}

	// Request validation failures.
	ErrNoPasswordProvided = &Error{Code: "no_password_provided", Message: "no password provided"}
	ErrNoCountProvided    = &Error{Code: "no_count_provided", Message: "no count provided"}
	ErrNoPageProvided     = &Error{Code: "no_page_provided", Message: "no page provided"}
	ErrInvalidCount       = &Error{Code: "invalid_count", Message: "count must be a positive number"}
	ErrInvalidPageNumber  = &Error{Code: "invalid_page_number", Message: "page must be a positive number"}
)

// Soft output markers returned alongside ok responses. These are not errors;
// the operation completed without mutating anything.
const (
	WarningAlreadySignedIn  = "already_signed_in"
	WarningAlreadySignedOut = "already_signed_out"
	WarningAlreadyDeleted   = "already_deleted"
	WarningNothingToDelete  = "nothing_to_delete"
	WarningNoResults        = "no_results"
)

// CodeOf extracts the stable code from err, or "unknown_error" for anything
// that is not a typed business failure.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "unknown_error"
}
