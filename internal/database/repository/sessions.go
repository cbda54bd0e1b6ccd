package repository

import (
	"context"
	"database/sql"
	"errors"
)

// SessionRepo stores the device's current session. The table may hold
// history, but Replace keeps at most one row.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Replace swaps whatever session is stored for s in one transaction.
func (r *SessionRepo) Replace(ctx context.Context, s SessionRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO sessions(id, user_id, username, token, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?);
	`, s.ID, s.UserID, s.Username, s.Token, s.CreatedAt, s.ExpiresAt); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Latest returns nil, nil when no session is stored.
func (r *SessionRepo) Latest(ctx context.Context) (*SessionRow, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, username, token, created_at, expires_at
	FROM sessions ORDER BY created_at DESC LIMIT 1`)
	var s SessionRow
	if err := row.Scan(&s.ID, &s.UserID, &s.Username, &s.Token, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}
