package sessions

import "time"

// Session is an anonymous server-side record tying one resume upload to a
// TTL-bounded identifier.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	HasResume bool
	FileName  string
	FileType  string
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// meta is the persisted metadata record, one JSON object per session.
type meta struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	HasResume bool      `json:"has_resume"`
	FileName  string    `json:"file_name,omitempty"`
	FileType  string    `json:"file_type,omitempty"`
}

func (m meta) toSession() Session {
	return Session{
		ID:        m.SessionID,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		HasResume: m.HasResume,
		FileName:  m.FileName,
		FileType:  m.FileType,
	}
}
