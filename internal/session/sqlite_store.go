package session

import (
	"context"
	"database/sql"

	"github.com/jask/sceneflow/internal/database/repository"
)

// SQLiteStore keeps the current session in the local database.
type SQLiteStore struct {
	repo *repository.SessionRepo
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{repo: repository.NewSessionRepo(db)}
}

func (s *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	row, err := s.repo.Latest(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	return &Session{
		ID:        row.ID,
		UserID:    row.UserID,
		Username:  row.Username,
		Token:     row.Token,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	return s.repo.Replace(ctx, repository.SessionRow{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Username:  sess.Username,
		Token:     sess.Token,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *SQLiteStore) Delete(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
