// Package scope holds the active scope chart repositories are listed under
// and notifies observers when it changes.
package scope

import (
	"sort"
	"sync"

	"charthub/internal/domain"
	"charthub/internal/eventbus"
)

// Observer is called with the new scope after every change
type Observer func(domain.Scope)

// Selector owns the active scope
type Selector struct {
	mu        sync.RWMutex
	active    domain.Scope
	observers map[uint64]Observer
	nextID    uint64
	bus       eventbus.EventBus
}

// NewSelector creates a selector starting at initial
func NewSelector(initial domain.Scope) *Selector {
	return &Selector{
		active:    initial,
		observers: make(map[uint64]Observer),
	}
}

// NewSelectorWithBus creates a selector that also publishes ScopeChangedEvent
func NewSelectorWithBus(initial domain.Scope, bus eventbus.EventBus) *Selector {
	s := NewSelector(initial)
	s.bus = bus
	return s
}

// Active returns the current scope
func (s *Selector) Active() domain.Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Set changes the active scope. Observers are notified synchronously, in
// subscription order, and only when the scope actually changed.
func (s *Selector) Set(next domain.Scope) bool {
	s.mu.Lock()
	prev := s.active
	if prev == next {
		s.mu.Unlock()
		return false
	}
	s.active = next
	observers := s.snapshot()
	s.mu.Unlock()

	for _, observe := range observers {
		observe(next)
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.ScopeChangedEvent{From: prev, To: next})
	}
	return true
}

// Subscribe registers an observer and returns a function removing it
func (s *Selector) Subscribe(observe Observer) func() {
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

// snapshot must be called with the lock held
func (s *Selector) snapshot() []Observer {
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = s.observers[id]
	}
	return observers
}
