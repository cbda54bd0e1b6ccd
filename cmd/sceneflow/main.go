package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/jask/sceneflow/internal/config"
	"github.com/jask/sceneflow/internal/database"
	"github.com/jask/sceneflow/internal/database/repository"
	"github.com/jask/sceneflow/internal/flow"
	"github.com/jask/sceneflow/internal/prefs"
	"github.com/jask/sceneflow/internal/scene"
	"github.com/jask/sceneflow/internal/secrets"
	"github.com/jask/sceneflow/internal/session"
	"github.com/jask/sceneflow/internal/tui"
)

func main() {
	reset := flag.Bool("reset", false, "delete all users and sessions, then exit")
	rotate := flag.Bool("rotate-key", false, "replace the session signing key, signing everyone out")
	initConfig := flag.Bool("init-config", false, "write the effective configuration to the config file, then exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *initConfig {
		if err := config.Save(cfg); err != nil {
			log.Fatalf("save config: %v", err)
		}
		fmt.Println("config written")
		return
	}

	if cfg.Log.Path != "" {
		f, err := tea.LogToFile(cfg.Log.Path, "sceneflow")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else if !*reset && !*rotate {
		// keep the alt screen clean
		log.SetOutput(io.Discard)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if *reset {
		if err := database.Reset(ctx, db); err != nil {
			log.Fatalf("reset: %v", err)
		}
		fmt.Println("database reset")
		return
	}
	if *rotate {
		if err := secrets.DeleteSigningKey(cfg.Session.KeyDir); err != nil && !errors.Is(err, secrets.ErrNotFound) {
			log.Fatalf("rotate key: %v", err)
		}
		fmt.Println("signing key removed; a new one is generated on next start")
		return
	}

	if err := database.SeedDefaults(ctx, db, cfg.Auth.SeedUser, cfg.Auth.SeedPassword); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	key, err := secrets.SigningKey(cfg.Session.KeyDir)
	if err != nil {
		log.Fatalf("signing key: %v", err)
	}
	tokens, err := session.NewTokens(key, cfg.Session.Issuer)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	store, closeStore, err := sessionStore(ctx, cfg, db)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer closeStore()

	username := cfg.Auth.SeedUser
	if saved, err := prefs.Load(cfg.Session.KeyDir); err != nil {
		log.Printf("prefs: %v", err)
	} else if saved.LastUser != "" {
		username = saved.LastUser
	}

	users := repository.NewUserRepo(db)
	mgr := session.NewManager(store, users, tokens, session.WithTTL(cfg.Session.TTL))

	app := tui.New(ctx, mgr, tui.Options{
		Scene: scene.Options{
			FadeDuration:  cfg.UI.FadeDuration,
			FrameInterval: cfg.UI.FrameInterval,
			Debug:         cfg.Debug,
		},
		Username: username,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// Scenes report their own logins and logouts; only changes that happen
	// behind the user's back are forwarded. Events can fire from inside
	// Update, so Send must not block the event loop.
	unsubscribe := mgr.Subscribe(func(ev session.Event) {
		switch {
		case ev.Kind == session.LoggedIn:
			if err := prefs.Save(cfg.Session.KeyDir, prefs.Prefs{LastUser: ev.Username, LastLogin: time.Now()}); err != nil {
				log.Printf("prefs: %v", err)
			}
		case ev.Kind.External():
			go p.Send(flow.SessionChangedMsg{Reason: ev.Kind.String()})
		}
	})
	defer unsubscribe()
	go mgr.Watch(ctx, cfg.Session.CheckInterval)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("error: %v\n", err)
	}
}

func sessionStore(ctx context.Context, cfg config.Config, db *sql.DB) (session.Store, func(), error) {
	switch strings.ToLower(cfg.Session.Backend) {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: resolveRedisPassword(cfg),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Session.RedisAddr, err)
		}
		return session.NewRedisStore(rdb, cfg.Session.RedisPrefix), func() { _ = rdb.Close() }, nil
	default:
		return session.NewSQLiteStore(db), func() {}, nil
	}
}

func resolveRedisPassword(cfg config.Config) string {
	if env := strings.TrimSpace(cfg.Session.RedisPasswordEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if v, err := secrets.Fetch(cfg.Session.KeyDir, "redis-password"); err == nil {
		return string(v)
	}
	return ""
}
