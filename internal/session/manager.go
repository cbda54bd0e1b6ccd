package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jask/sceneflow/internal/database/repository"
	"github.com/jask/sceneflow/internal/password"
)

const DefaultTTL = 12 * time.Hour

// Users is the credential source used by Login.
type Users interface {
	ByUsername(ctx context.Context, username string) (*repository.User, error)
	Usernames(ctx context.Context) ([]string, error)
}

type Option func(*Manager)

func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
			m.tokens.now = now
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager is safe for concurrent use.
type Manager struct {
	store  Store
	users  Users
	tokens *Tokens
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger

	mu      sync.Mutex
	live    *Session // last session seen valid
	subs    map[int]func(Event)
	nextSub int
}

func NewManager(store Store, users Users, tokens *Tokens, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		users:  users,
		tokens: tokens,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: log.Default(),
		subs:   map[int]func(Event){},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) HasSession(ctx context.Context) (bool, error) {
	s, err := m.Current(ctx)
	return s != nil, err
}

// Current returns the stored session if it still verifies. Sessions that
// expired or no longer verify are deleted and reported to subscribers.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if s == nil {
		if prev := m.forget(); prev != nil {
			kind := Revoked
			if !m.now().Before(prev.ExpiresAt) {
				kind = Expired
			}
			m.publish(Event{Kind: kind, Username: prev.Username})
		}
		return nil, nil
	}

	claims, err := m.tokens.Verify(s.Token)
	if err == nil && (claims.ID != s.ID || claims.Subject != s.UserID) {
		err = ErrInvalidToken
	}
	if err == nil && !m.now().Before(s.ExpiresAt) {
		err = jwt.ErrTokenExpired
	}
	if err != nil {
		kind := Revoked
		if errors.Is(err, jwt.ErrTokenExpired) {
			kind = Expired
		}
		m.logger.Printf("session: dropping session for %s: %v", s.Username, err)
		if derr := m.store.Delete(ctx); derr != nil {
			return nil, fmt.Errorf("session: delete invalid session: %w", derr)
		}
		m.forget()
		m.publish(Event{Kind: kind, Username: s.Username})
		return nil, nil
	}

	m.remember(*s)
	return s, nil
}

// Login checks the credentials and stores a new session.
func (m *Manager) Login(ctx context.Context, username, plain string) (*Session, error) {
	username = strings.TrimSpace(username)
	u, err := m.users.ByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("session: look up user: %w", err)
	}
	if u == nil {
		uerr := &UnknownUserError{Username: username}
		if names, err := m.users.Usernames(ctx); err == nil {
			uerr.Suggestion = closest(username, names)
		}
		return nil, uerr
	}
	ok, err := password.Verify(plain, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("session: verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := m.now().UTC().Truncate(time.Second)
	s := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if s.Token, err = m.tokens.Issue(s); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}

	m.remember(s)
	m.logger.Printf("session: %s logged in, expires %s", s.Username, s.ExpiresAt.Format(time.RFC3339))
	m.publish(Event{Kind: LoggedIn, Username: s.Username})
	return &s, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	s, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: load: %w", err)
	}
	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	name := ""
	if s != nil {
		name = s.Username
	}
	m.forget()
	m.logger.Printf("session: %s logged out", name)
	m.publish(Event{Kind: LoggedOut, Username: name})
	return nil
}

// Subscribe registers fn for session events until cancel is called. fn runs
// on the goroutine that caused the event and must not block.
func (m *Manager) Subscribe(fn func(Event)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Watch re-checks the stored session every interval so expiry and
// out-of-process logouts are reported without user input. It returns when
// ctx is done.
func (m *Manager) Watch(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.Current(ctx); err != nil && ctx.Err() == nil {
				m.logger.Printf("session: watch: %v", err)
			}
		}
	}
}

func (m *Manager) remember(s Session) {
	m.mu.Lock()
	m.live = &s
	m.mu.Unlock()
}

// forget clears and returns the last live session.
func (m *Manager) forget() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.live
	m.live = nil
	return prev
}

func (m *Manager) publish(ev Event) {
	m.mu.Lock()
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
