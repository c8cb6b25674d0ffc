package domain

import "time"

// Session is what a verified bearer token resolves to. ExpiresAt is zero for
// opaque sessions, which only end on logout or restart.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	AMR       []string  `json:"amr,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func NewSession(u User, issuedAt time.Time, amr ...string) Session {
	return Session{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		AMR:      amr,
		IssuedAt: issuedAt,
	}
}

// Subject is the id of the authenticated user.
func (s Session) Subject() string { return s.UserID }
