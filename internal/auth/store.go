// Package auth owns session state: the bearer token, the resolved user and
// the lifecycle between them. The Store is the only code that mutates either;
// views read it and call its operations, never each other's state.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/moonbound/moonbound/pkg/api"
	"github.com/moonbound/moonbound/pkg/domain"
)

// State is the auth lifecycle phase.
type State int

const (
	// StateHydrating: startup, persisted token not yet validated.
	StateHydrating State = iota
	// StateAnonymous: no usable session.
	StateAnonymous
	// StateAuthenticated: token and user both present.
	StateAuthenticated
)

// Store is the single owner of session state. Invariant: StateAuthenticated
// implies a non-empty token on the client AND a non-nil user; every failure
// path tears both down together so no partial state survives.
type Store struct {
	client *api.Client
	tokens *TokenFile
	log    *zap.Logger

	mu    sync.Mutex
	state State
	user  *domain.User
}

// NewStore creates a store in StateHydrating. Call Hydrate before reading
// the state.
func NewStore(client *api.Client, tokens *TokenFile, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, tokens: tokens, log: log, state: StateHydrating}
}

// State returns the current lifecycle phase.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated user, or nil.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether both token and user are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated && s.user != nil && s.client.Token() != ""
}

// Hydrate restores the session from the persisted token and returns the
// resulting state. Any failure to resolve the user, a network error
// included, is a conservative logout: the token is dropped rather than
// retried, and the store lands in StateAnonymous.
func (s *Store) Hydrate(ctx context.Context) State {
	tok := s.tokens.Load()
	if tok == "" {
		s.setAnonymous()
		return StateAnonymous
	}

	s.client.SetToken(tok)
	user, err := s.client.Me(ctx)
	if err != nil {
		s.log.Info("hydration failed, dropping persisted token", zap.Error(err))
		s.dropSession()
		return StateAnonymous
	}

	s.setAuthenticated(user)
	s.log.Info("session restored", zap.String("email", user.Email))
	return StateAuthenticated
}

// Login authenticates with the given credentials. On success the token is
// persisted and the user resolved; on any failure the store stays anonymous
// with nothing persisted, and the error is returned for display.
func (s *Store) Login(ctx context.Context, email, password string) error {
	tok, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adoptToken(ctx, tok)
}

// Register creates an account and signs in. Same contract as Login; name is
// optional and may be empty.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	tok, err := s.client.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	return s.adoptToken(ctx, tok)
}

// Logout clears persisted and in-memory session state unconditionally. It
// never fails: a token file that cannot be removed is logged and forgotten.
func (s *Store) Logout() {
	s.dropSession()
	s.log.Info("logged out")
}

// adoptToken persists tok, installs it and resolves the user. A failure at
// any step rolls everything back.
func (s *Store) adoptToken(ctx context.Context, tok string) error {
	if err := s.tokens.Save(tok); err != nil {
		return err
	}
	s.client.SetToken(tok)

	user, err := s.client.Me(ctx)
	if err != nil {
		s.dropSession()
		return err
	}
	s.setAuthenticated(user)
	return nil
}

func (s *Store) dropSession() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Warn("could not clear persisted token", zap.Error(err))
	}
	s.client.ClearToken()
	s.setAnonymous()
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) setAuthenticated(user *domain.User) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	s.mu.Unlock()
}
