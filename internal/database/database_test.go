package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jask/sceneflow/internal/database/repository"
	"github.com/jask/sceneflow/internal/password"
)

func TestOpenMigratesAndSeedsOnce(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "app.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := SeedDefaults(ctx, db, "demo", "demo-password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedDefaults(ctx, db, "other", "other-password"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	users := repository.NewUserRepo(db)
	names, err := users.Usernames(ctx)
	if err != nil {
		t.Fatalf("usernames: %v", err)
	}
	if len(names) != 1 || names[0] != "demo" {
		t.Fatalf("usernames = %v, want [demo]", names)
	}
	u, err := users.ByUsername(ctx, "demo")
	if err != nil || u == nil {
		t.Fatalf("by username: %v %v", u, err)
	}
	if u.ID != UserID("DEMO") {
		t.Fatalf("user id should be derived from the lowercased name")
	}
	if ok, err := password.Verify("demo-password", u.PasswordHash); err != nil || !ok {
		t.Fatalf("seeded hash does not verify: %v %v", ok, err)
	}
}

func TestSessionRepoKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := SeedDefaults(ctx, db, "demo", "pw"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := repository.NewSessionRepo(db)

	if s, err := repo.Latest(ctx); err != nil || s != nil {
		t.Fatalf("empty latest = %v, %v", s, err)
	}
	now := Now()
	for i, id := range []string{"s1", "s2"} {
		row := repository.SessionRow{
			ID: id, UserID: UserID("demo"), Username: "demo", Token: "tok-" + id,
			CreatedAt: now.Add(time.Duration(i) * time.Second), ExpiresAt: now.Add(time.Hour),
		}
		if err := repo.Replace(ctx, row); err != nil {
			t.Fatalf("replace %s: %v", id, err)
		}
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("session rows = %d, %v", n, err)
	}
	s, err := repo.Latest(ctx)
	if err != nil || s == nil || s.ID != "s2" || s.Token != "tok-s2" {
		t.Fatalf("latest = %+v, %v", s, err)
	}

	if err := Reset(ctx, db); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s, _ := repo.Latest(ctx); s != nil {
		t.Fatalf("reset should drop sessions")
	}
	if n, _ := repository.NewUserRepo(db).Count(ctx); n != 0 {
		t.Fatalf("reset should drop users, %d left", n)
	}
}
