package entity

import "time"

// Session sesión activa; su ID viaja como jti dentro del token.
type Session struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired indica si la sesión ya no es válida en el instante now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
