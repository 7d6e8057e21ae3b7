package models

import "time"

// Session is the server-side counterpart to the bearer token: an opaque
// random token created at login and deleted at logout. Expired rows are
// ignored by lookups and reaped by the cleanup sweep.
type Session struct {
	ID           string
	UserID       string
	Token        string
	UserAgent    string
	IPAddress    string
	ExpiresAt    time.Time
	LastActivity time.Time
	CreatedAt    time.Time
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
