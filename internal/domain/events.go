package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSessionChanged     EventType = "SessionChanged"
	EventScopeChanged       EventType = "ScopeChanged"
	EventRepositoriesLoaded EventType = "RepositoriesLoaded"
	EventRepositoryMutated  EventType = "RepositoryMutated"
	EventAuthRequired       EventType = "AuthRequired"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SessionChangedEvent is emitted when the session store moves to a new state.
// It carries no payload: consumers read the store they hold a reference to.
type SessionChangedEvent struct{}

func (e SessionChangedEvent) Type() EventType { return EventSessionChanged }

// ScopeChangedEvent is emitted when the active scope changes
type ScopeChangedEvent struct {
	From Scope
	To   Scope
}

func (e ScopeChangedEvent) Type() EventType { return EventScopeChanged }

// RepositoriesLoadedEvent is emitted when a list request completes and its result is applied
type RepositoriesLoadedEvent struct {
	Scope Scope
	Count int
}

func (e RepositoriesLoadedEvent) Type() EventType { return EventRepositoriesLoaded }

// RepositoryMutatedEvent is emitted after a successful add, update or delete
type RepositoryMutatedEvent struct {
	Scope  Scope
	Name   string
	Action string // "add", "update" or "delete"
}

func (e RepositoryMutatedEvent) Type() EventType { return EventRepositoryMutated }

// AuthRequiredEvent is emitted when the hub rejects a request because the session is gone
type AuthRequiredEvent struct{}

func (e AuthRequiredEvent) Type() EventType { return EventAuthRequired }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	HubURL string
	Org    string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
