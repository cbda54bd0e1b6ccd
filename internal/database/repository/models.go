package repository

import "time"

// User represents a users row.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SessionRow represents a sessions row.
type SessionRow struct {
	ID        string
	UserID    string
	Username  string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
