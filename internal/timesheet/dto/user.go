package dto

import "github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"

type CreateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type ChangePasswordInput struct {
	NewPassword string `json:"newPassword"`
}

type DeleteUserInput struct {
	Password string `json:"password"`
}

// UserOutput never includes the secret.
type UserOutput struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Session   *int64 `json:"session"`
}

type UserStatusOutput struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Session   *SessionOutput `json:"session"`
}

func FromUser(u *domain.User) UserOutput {
	return UserOutput{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Session:   u.SessionPointer,
	}
}

func FromUsers(users []domain.User) []UserOutput {
	out := make([]UserOutput, 0, len(users))
	for i := range users {
		out = append(out, FromUser(&users[i]))
	}
	return out
}

func FromUserStatus(s *domain.UserStatus) UserStatusOutput {
	out := UserStatusOutput{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
	}
	if s.Session != nil {
		session := FromSession(s.Session)
		out.Session = &session
	}
	return out
}

func FromUserStatuses(statuses []domain.UserStatus) []UserStatusOutput {
	out := make([]UserStatusOutput, 0, len(statuses))
	for i := range statuses {
		out = append(out, FromUserStatus(&statuses[i]))
	}
	return out
}
