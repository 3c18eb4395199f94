package models

import "time"

// Session is the server-side state behind a session_token cookie. Timestamps
// are RFC 3339 strings, as stored in the Redis hash.
type Session struct {
	SessionToken string `json:"session_token"`
	UserID       string `json:"user_id"`
	CreatedAt    string `json:"created_at"`
	ExpiresAt    string `json:"expires_at"`
	LastActivity string `json:"last_activity"`
	UserAgent    string `json:"user_agent"`
	IPAddress    string `json:"ip_address"`
}

// Expired reports whether the session is past its expiry at now. A session
// with an unreadable expiry counts as expired.
func (s *Session) Expired(now time.Time) bool {
	expiresAt, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil {
		return true
	}
	return !now.Before(expiresAt)
}
