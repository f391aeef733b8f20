// Package session owns the authenticated identity and credential that gate
// every remote operation.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nhle/tasksync/internal/credential"
	"github.com/nhle/tasksync/internal/model"
)

// storageKey is the vault key holding the persisted session record.
const storageKey = "session"

// Session is an authenticated identity plus its bearer token.
type Session struct {
	Identity model.Identity `json:"user"`
	Token    string         `json:"token"`
}

// MalformedStateError reports a persisted session that could not be
// decoded. Restore treats it as absence of a session.
type MalformedStateError struct {
	Reason string
}

func (e *MalformedStateError) Error() string {
	return "malformed session state: " + e.Reason
}

// Vault is the durable storage the Store persists to.
type Vault interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store holds the current session. The zero state is unauthenticated.
// It is safe for concurrent use; gateway requests read the token from
// other goroutines.
type Store struct {
	vault  Vault
	logger *slog.Logger

	mu      sync.RWMutex
	current *Session
}

// NewStore creates an unauthenticated Store persisting to vault.
func NewStore(vault Vault, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{vault: vault, logger: logger}
}

// Restore loads the persisted session. It returns nil when none is stored
// or the stored record is malformed; a malformed record is removed.
func (s *Store) Restore() (*Session, error) {
	data, err := s.vault.Get(storageKey)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	sess, err := decode(data)
	if err != nil {
		s.logger.Warn("discarding persisted session", "error", err)
		if delErr := s.vault.Delete(storageKey); delErr != nil {
			s.logger.Warn("removing malformed session", "error", delErr)
		}
		return nil, nil
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	out := *sess
	return &out, nil
}

func decode(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, &MalformedStateError{Reason: err.Error()}
	}
	if sess.Token == "" {
		return nil, &MalformedStateError{Reason: "missing token"}
	}
	if sess.Identity.ID == "" && sess.Identity.Email == "" {
		return nil, &MalformedStateError{Reason: "missing identity"}
	}
	return &sess, nil
}

// Login persists identity and token as one record and makes the session
// current. If persisting fails the store stays unauthenticated.
func (s *Store) Login(identity model.Identity, token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("login: empty token")
	}

	sess := &Session{Identity: identity, Token: token}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := s.vault.Set(storageKey, data); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	out := *sess
	return &out, nil
}

// Logout clears the persisted record and the in-memory session. The
// in-memory state is cleared even if the vault delete fails.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.vault.Delete(storageKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns a copy of the active session, or nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// Valid reports whether a session is active.
func (s *Store) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Token returns the bearer token of the active session.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return "", false
	}
	return s.current.Token, true
}
