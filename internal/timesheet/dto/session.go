package dto

import "github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"

type CreateSessionInput struct {
	Password  string `json:"password"`
	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime"`
}

type PatchSessionInput struct {
	Method string `json:"method"`
}

type SessionOutput struct {
	SessionID int64  `json:"session_id"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time"`
}

func FromSession(s *domain.Session) SessionOutput {
	return SessionOutput{
		SessionID: s.ID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func FromSessions(sessions []domain.Session) []SessionOutput {
	out := make([]SessionOutput, 0, len(sessions))
	for i := range sessions {
		out = append(out, FromSession(&sessions[i]))
	}
	return out
}
