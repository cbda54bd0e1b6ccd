package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/sceneflow/internal/database/repository"
	"github.com/jask/sceneflow/internal/password"
)

// SeedDefaults creates the first user on an empty database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, username, plain string) error {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil
	}
	users := repository.NewUserRepo(db)
	n, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	return users.Upsert(ctx, repository.User{
		ID:           UserID(username),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    Now(),
	})
}

// UserID derives a stable id from a username.
func UserID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("user:"+strings.ToLower(username))).String()
}
