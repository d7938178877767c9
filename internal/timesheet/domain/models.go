package domain

// User is an identity row. The secret (the user's password) is the durable
// key every other table uses to reference the user, never the numeric id.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Secret    string
	// SessionPointer references the most recently created session for this
	// user. Kept up to date by convention, not by a foreign-key cascade, so
	// it can dangle after a session delete.
	SessionPointer *int64
}

// Credential is one issued API key. Revocation is one-way: once Revoked is
// true the row never goes back.
type Credential struct {
	ID      int64
	Secret  string
	Token   string
	Revoked bool
}

// Session is one interval of signed-in activity. Times are epoch millis.
// A nil EndTime means the session is still ongoing.
type Session struct {
	ID        int64
	Secret    string
	StartTime int64
	EndTime   *int64
}

// Ongoing reports whether the session has not been signed out yet.
func (s *Session) Ongoing() bool {
	return s != nil && s.EndTime == nil
}

// UserStatus pairs a user with the session their pointer references, if any.
type UserStatus struct {
	ID        int64
	FirstName string
	LastName  string
	Session   *Session
}
