// Package session owns the "who is logged in" state of one client device and
// carries it across process restarts through a pluggable key-value backend.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodguard/internal/directory"
	apperrors "foodguard/internal/errors"
	"foodguard/internal/model"
	"foodguard/internal/storage"
)

// Storage keys. auth_user holds the JSON-serialized sanitized user; the
// password hash is never written.
const (
	tokenKey = "auth_token"
	userKey  = "auth_user"
)

// DefaultStorageTimeout bounds every persistence call so a hanging backend
// cannot block a state transition forever.
const DefaultStorageTimeout = 5 * time.Second

// TokenIssuer mints a session token for a user. Without an issuer the store
// falls back to random opaque tokens and RefreshToken becomes a no-op.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// Session is a point-in-time snapshot of the store. Authenticated is true
// iff both user and token are present; there are no intermediate states.
type Session struct {
	User          *model.User `json:"user,omitempty"`
	Token         string      `json:"token,omitempty"`
	Loading       bool        `json:"loading"`
	Authenticated bool        `json:"authenticated"`
}

// Store is the single source of truth for the current session of one
// device. It starts unresolved; Restore settles it into authenticated or
// unauthenticated, and Login/Logout move between those two states.
type Store struct {
	storage   storage.Storage
	directory directory.Directory
	issuer    TokenIssuer
	timeout   time.Duration

	mu       sync.Mutex
	user     *model.User
	token    string
	loading  bool
	restored bool
}

// Option configures a Store.
type Option func(*Store)

// WithIssuer sets the token issuer used by Login and RefreshToken.
func WithIssuer(issuer TokenIssuer) Option {
	return func(s *Store) { s.issuer = issuer }
}

// WithStorageTimeout overrides the per-call persistence deadline.
func WithStorageTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// NewStore creates a session store over the given persistence backend and
// user directory. The store starts in the unresolved state with the loading
// flag set; call Restore exactly once before Login or Logout.
func NewStore(st storage.Storage, dir directory.Directory, opts ...Option) *Store {
	s := &Store{
		storage:   st,
		directory: dir,
		timeout:   DefaultStorageTimeout,
		loading:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a previously persisted session. A missing key, a user blob
// that fails to parse, or a storage failure all settle the store into the
// unauthenticated state; none of them is an error to the caller. The loading
// flag is cleared on every path. Calling Restore again after it has resolved
// is a no-op.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return
	}
	defer func() {
		s.loading = false
		s.restored = true
	}()

	tokenRaw, err := s.get(ctx, tokenKey)
	if err != nil {
		log.Printf("session restore: %v, treating as no session", err)
		return
	}
	userRaw, err := s.get(ctx, userKey)
	if err != nil {
		log.Printf("session restore: %v, treating as no session", err)
		return
	}
	if tokenRaw == nil || userRaw == nil {
		return
	}

	var user model.User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		log.Printf("session restore: corrupt user record: %v, treating as no session", err)
		return
	}

	s.user = &user
	s.token = string(tokenRaw)
}

// Login authenticates credentials against the directory and, on success,
// persists the token and the sanitized user before updating the in-memory
// state. No persistence write happens on a failed match, and a write failure
// aborts the login: a token that cannot be persisted would silently vanish
// on the next restart. Login on an already authenticated store is rejected.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email == "" || password == "" {
		return s.snapshot(), apperrors.ErrMissingCredentials
	}
	if s.user != nil && s.token != "" {
		return s.snapshot(), apperrors.ErrAlreadyAuthenticated
	}

	// Every return path below must clear the loading flag before taking
	// its snapshot; a session that is both loading and authenticated is
	// not a valid state.
	s.loading = true
	fail := func(err error) (Session, error) {
		s.loading = false
		return s.snapshot(), err
	}

	user, err := s.directory.Lookup(ctx, email, password)
	if err != nil {
		return fail(err)
	}
	sanitized := user.Sanitized()

	token, err := s.issueToken(sanitized)
	if err != nil {
		return fail(fmt.Errorf("issue session token: %w", err))
	}

	payload, err := json.Marshal(sanitized)
	if err != nil {
		return fail(fmt.Errorf("marshal session user: %w", err))
	}
	if err := s.set(ctx, tokenKey, []byte(token)); err != nil {
		return fail(err)
	}
	if err := s.set(ctx, userKey, payload); err != nil {
		// Roll back the token write so restore never sees half a session.
		if rmErr := s.remove(ctx, tokenKey); rmErr != nil {
			log.Printf("session login: rollback of %s failed: %v", tokenKey, rmErr)
		}
		return fail(err)
	}

	s.user = sanitized
	s.token = token
	s.loading = false
	return s.snapshot(), nil
}

// Logout clears the persisted session and resets the in-memory state.
// Removal failures are logged only; from the caller's perspective logout
// always succeeds.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.remove(ctx, tokenKey); err != nil {
		log.Printf("session logout: %v", err)
	}
	if err := s.remove(ctx, userKey); err != nil {
		log.Printf("session logout: %v", err)
	}

	s.user = nil
	s.token = ""
	s.loading = false
}

// Token returns the current session token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Current returns a snapshot of the session state.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Authenticated reports whether both user and token are present.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

// RefreshToken exchanges the current token for a fresh one. Without an
// issuer, or when unauthenticated, it is a guaranteed no-op. The new token
// is persisted before it replaces the one in memory, so a write failure
// leaves both the persisted and in-memory session on the old token.
func (s *Store) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.issuer == nil || s.user == nil || s.token == "" {
		return nil
	}

	token, err := s.issuer.Issue(s.user)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	if err := s.set(ctx, tokenKey, []byte(token)); err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *Store) snapshot() Session {
	return Session{
		User:          s.user,
		Token:         s.token,
		Loading:       s.loading,
		Authenticated: s.user != nil && s.token != "",
	}
}

func (s *Store) issueToken(user *model.User) (string, error) {
	if s.issuer != nil {
		return s.issuer.Issue(user)
	}
	return uuid.New().String(), nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.storage.Get(ctx, key)
	return v, s.mapTimeout(ctx, key, err)
}

func (s *Store) set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.mapTimeout(ctx, key, s.storage.Set(ctx, key, value))
}

func (s *Store) remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.mapTimeout(ctx, key, s.storage.Remove(ctx, key))
}

func (s *Store) mapTimeout(ctx context.Context, key string, err error) error {
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %s", apperrors.ErrStorageTimeout, key)
	}
	return err
}
