// Package auth provides sign-up, sign-in and in-memory sessions for the
// household members, with a stream of session changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"anggaran/internal/core"
	"anggaran/internal/store"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// MaxPasswordLength is the bcrypt input limit, in bytes.
const MaxPasswordLength = 72

// DefaultSessionTTL applies when the service is built with a zero TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = fmt.Errorf("invalid login credentials: %w", core.ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("session expired: %w", core.ErrUnauthorized)
)

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

type SessionEvent struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

type Session struct {
	Token     string    `json:"access_token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// subscriberBuffer is the per-subscriber queue; events beyond it are dropped.
const subscriberBuffer = 16

type Service struct {
	users store.UserStore
	ttl   time.Duration
	now   func() time.Time
	cost  int

	mu       sync.Mutex
	sessions map[string]Session
	subs     map[int]chan SessionEvent
	nextSub  int
}

func NewService(users store.UserStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:    users,
		ttl:      ttl,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
		sessions: make(map[string]Session),
		subs:     make(map[int]chan SessionEvent),
	}
}

// SignUp registers a new member. The email is stored lowercased.
func (s *Service) SignUp(ctx context.Context, email, password string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return core.User{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return core.User{}, ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return core.User{}, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, core.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		return core.User{}, fmt.Errorf("sign up: %w", err)
	}

	slog.InfoContext(ctx, "User signed up", "user_id", u.ID)
	return u, nil
}

// SignIn checks the password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	sess := Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	expired := s.sweepExpiredLocked()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	for _, userID := range expired {
		s.publish(SessionEvent{Type: SignedOut, UserID: userID, At: s.now()})
	}

	slog.InfoContext(ctx, "User signed in", "user_id", u.ID)
	s.publish(SessionEvent{Type: SignedIn, UserID: u.ID, At: s.now()})
	return sess, nil
}

// sweepExpiredLocked drops every expired session and returns their user ids.
// s.mu must be held.
func (s *Service) sweepExpiredLocked() []string {
	now := s.now()
	var expired []string
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			expired = append(expired, sess.UserID)
		}
	}
	return expired
}

// ActiveSessions is the number of sessions currently held.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SignOut ends the session. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if ok {
		slog.InfoContext(ctx, "User signed out", "user_id", sess.UserID)
		s.publish(SessionEvent{Type: SignedOut, UserID: sess.UserID, At: s.now()})
	}
	return nil
}

// Session looks up a live session. Expired sessions are dropped and reported
// as signed out.
func (s *Service) Session(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return Session{}, core.ErrUnauthorized
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		s.mu.Unlock()
		s.publish(SessionEvent{Type: SignedOut, UserID: sess.UserID, At: s.now()})
		return Session{}, ErrSessionExpired
	}
	s.mu.Unlock()
	return sess, nil
}

// Subscribe returns a channel of session changes and a function that stops
// delivery and closes the channel.
func (s *Service) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(ev SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Session event dropped for slow subscriber", "subscriber", id, "type", ev.Type)
		}
	}
}
