// Package session tracks whether a user is signed in on this device.
//
// A Manager verifies credentials, issues a signed token for the session,
// persists it through a Store (sqlite or redis) and notifies subscribers of
// login, logout, expiry and revocation. It satisfies flow.SessionState.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Session is the signed-in state persisted by a Store.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists at most one current session. Load returns nil, nil when
// nothing is stored.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}

type EventKind int

const (
	LoggedIn EventKind = iota + 1
	LoggedOut
	// Expired sessions reached their expiry time.
	Expired
	// Revoked sessions disappeared or stopped verifying, e.g. after a
	// logout in another process or a signing key rotation.
	Revoked
)

func (k EventKind) String() string {
	switch k {
	case LoggedIn:
		return "logged in"
	case LoggedOut:
		return "logged out"
	case Expired:
		return "expired"
	case Revoked:
		return "revoked"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// External reports whether the event happened outside a Login/Logout call
// made by this process.
func (k EventKind) External() bool {
	return k == Expired || k == Revoked
}

type Event struct {
	Kind     EventKind
	Username string
}

var (
	ErrInvalidCredentials = errors.New("session: invalid username or password")
	ErrUnknownUser        = errors.New("session: unknown user")
	ErrInvalidToken       = errors.New("session: invalid token")
)

// UnknownUserError carries the closest known username, if any is close.
type UnknownUserError struct {
	Username   string
	Suggestion string
}

func (e *UnknownUserError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown user %q, did you mean %q?", e.Username, e.Suggestion)
	}
	return fmt.Sprintf("unknown user %q", e.Username)
}

func (e *UnknownUserError) Is(target error) bool { return target == ErrUnknownUser }
