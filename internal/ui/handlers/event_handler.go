package handlers

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/eventbus"
	"charthub/internal/session"
	"charthub/internal/ui/commands"
	"charthub/internal/ui/state"
)

// SessionSource gives read-only access to the current session
type SessionSource interface {
	Current() session.Session
}

// EventHandler handles domain events and updates state
type EventHandler struct {
	state            *state.AppState
	sessions         SessionSource
	onSessionChanged func(session.Session) tea.Cmd
}

// NewEventHandler creates a new event handler. onSessionChanged runs on the
// UI goroutine after the status line was updated.
func NewEventHandler(appState *state.AppState, sessions SessionSource, onSessionChanged func(session.Session) tea.Cmd) *EventHandler {
	return &EventHandler{
		state:            appState,
		sessions:         sessions,
		onSessionChanged: onSessionChanged,
	}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.SessionChangedEvent:
		current := h.sessions.Current()
		switch current.Status {
		case session.StatusAuthenticated:
			h.state.SetStatus(fmt.Sprintf("Signed in as %s", current.Alias()))
		case session.StatusAnonymous:
			h.state.SetStatus("Signed out")
		}
		if h.onSessionChanged != nil {
			return h.onSessionChanged(current)
		}

	case eventbus.ScopeChangedEvent:
		if e.To.IsPersonal() {
			h.state.SetStatus("Showing your chart repositories")
		} else {
			h.state.SetStatus(fmt.Sprintf("Showing chart repositories of %s", e.To.Org))
		}

	case eventbus.RepositoryMutatedEvent:
		h.state.SetStatus(MutationStatus(e.Action, e.Name))

	case eventbus.AuthRequiredEvent:
		h.state.SetError("Your session has expired, sign in to continue")

	case eventbus.ErrorEvent:
		h.state.SetError(fmt.Sprintf("Error: %s", e.Message))

	case eventbus.ConfigSavedEvent:
		h.state.SetStatus("Configuration saved")
	}

	return nil
}

// MutationStatus is the status line shown after a successful mutation
func MutationStatus(action, name string) string {
	switch action {
	case commands.MutationAdd:
		return fmt.Sprintf("Added %s", name)
	case commands.MutationUpdate:
		return fmt.Sprintf("Updated %s", name)
	case commands.MutationDelete:
		return fmt.Sprintf("Deleted %s", name)
	}
	return ""
}
