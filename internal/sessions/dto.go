package sessions

import "time"

// Response is the outward-facing representation of a session.
type Response struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	HasResume bool      `json:"has_resume"`
}

func toResponse(s Session) Response {
	return Response{
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt,
		HasResume: s.HasResume,
	}
}
