// Package session is the single owner of the signed-in state. Components
// hold a reference to the Store and subscribe to it; they never copy or
// mutate the session themselves.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/hub"
)

// Status of the session
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Session is a snapshot of the session state. User is set only when
// Status is StatusAuthenticated.
type Session struct {
	Status Status
	User   *domain.User
}

// Alias returns the signed-in user's alias or ""
func (s Session) Alias() string {
	if s.User == nil {
		return ""
	}
	return s.User.Alias
}

func (s Session) equal(o Session) bool {
	return s.Status == o.Status && s.Alias() == o.Alias()
}

// Authenticator is the part of the hub API the store drives
type Authenticator interface {
	GetUserAlias(ctx context.Context) (string, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	RegisterUser(ctx context.Context, user domain.NewUser) error
}

// Observer is called with the new session after every change
type Observer func(Session)

// Store owns the session
type Store struct {
	mu        sync.RWMutex
	auth      Authenticator
	current   Session
	observers map[uint64]Observer
	nextID    uint64
	bus       eventbus.EventBus
}

// NewStore creates a store in the loading state. Call Resolve to find out
// whether a saved session is still valid.
func NewStore(auth Authenticator) *Store {
	return &Store{
		auth:      auth,
		current:   Session{Status: StatusLoading},
		observers: make(map[uint64]Observer),
	}
}

// NewStoreWithBus creates a store that also publishes SessionChangedEvent
func NewStoreWithBus(auth Authenticator, bus eventbus.EventBus) *Store {
	s := NewStore(auth)
	s.bus = bus
	return s
}

// Current returns the current session
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers an observer and returns a function removing it
func (s *Store) Subscribe(observe Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = observe

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Resolve asks the hub who is signed in. A rejected session resolves to
// anonymous without error; any other failure also resolves to anonymous but
// is returned.
func (s *Store) Resolve(ctx context.Context) error {
	alias, err := s.auth.GetUserAlias(ctx)
	if err != nil {
		s.set(Session{Status: StatusAnonymous})
		if hub.IsLoginRedirect(err) {
			return nil
		}
		return fmt.Errorf("failed to resolve session: %w", err)
	}

	s.set(Session{Status: StatusAuthenticated, User: &domain.User{Alias: alias}})
	return nil
}

// SignIn opens a session. The state is left untouched when the hub rejects
// the credentials.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if err := s.auth.Login(ctx, email, password); err != nil {
		return err
	}

	alias, err := s.auth.GetUserAlias(ctx)
	if err != nil {
		return fmt.Errorf("signed in but failed to get user: %w", err)
	}

	log.Info().Str("alias", alias).Msg("Signed in")
	s.set(Session{Status: StatusAuthenticated, User: &domain.User{Alias: alias}})
	return nil
}

// SignUp registers a new account. It does not change the session: the hub
// requires the email address to be verified before signing in.
func (s *Store) SignUp(ctx context.Context, user domain.NewUser) error {
	if err := s.auth.RegisterUser(ctx, user); err != nil {
		return err
	}
	log.Info().Str("alias", user.Alias).Msg("Signed up")
	return nil
}

// SignOut closes the session
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return err
	}
	log.Info().Msg("Signed out")
	s.set(Session{Status: StatusAnonymous})
	return nil
}

// Expire marks the session as gone after the hub rejected a request
func (s *Store) Expire() {
	if s.Current().Status == StatusAuthenticated {
		log.Info().Msg("Session expired")
	}
	s.set(Session{Status: StatusAnonymous})
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	if s.current.equal(next) {
		s.mu.Unlock()
		return
	}
	s.current = next

	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = s.observers[id]
	}
	s.mu.Unlock()

	for _, observe := range observers {
		observe(next)
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.SessionChangedEvent{})
	}
}
