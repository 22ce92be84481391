package domain

import "time"

// Session is a signed-in device. Refresh tokens rotate within a session; only the current one is valid.
type Session struct {
	ID               string
	UserID           string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	LastSeenAt       *time.Time
	IPAddress        string
	UserAgent        string
	RefreshJti       string // jti of the current refresh token
	RefreshTokenHash string // SHA-256 of the current refresh token
	CreatedAt        time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
