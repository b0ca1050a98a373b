package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/logic"
)

// Executor handles command execution
type Executor struct {
	ctx        *CommandContext
	cancelLoad context.CancelFunc
}

// NewExecutor creates a new command executor
func NewExecutor(client Client, sessions Sessions, bus eventbus.EventBus, timeout time.Duration) *Executor {
	return &Executor{
		ctx: &CommandContext{
			Client:   client,
			Sessions: sessions,
			Bus:      bus,
			Timeout:  timeout,
		},
	}
}

// ExecuteLoad fetches the list for req. A load still in flight is cancelled:
// its result would be stale anyway.
func (e *Executor) ExecuteLoad(list *logic.RepositoryList, req logic.Request) tea.Cmd {
	e.CancelLoad()
	ctx, cancel := e.ctx.newContext()
	e.cancelLoad = cancel
	return func() tea.Msg {
		defer cancel()
		return ListLoadedMsg{Result: list.Fetch(ctx, req)}
	}
}

// CancelLoad cancels the load in flight, if any
func (e *Executor) CancelLoad() {
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
}

// ExecuteAdd creates and executes an add command
func (e *Executor) ExecuteAdd(scope domain.Scope, repo domain.ChartRepository) tea.Cmd {
	return NewMutateCommand(e.ctx, MutationAdd, scope, repo).Execute()
}

// ExecuteUpdate creates and executes an update command
func (e *Executor) ExecuteUpdate(scope domain.Scope, repo domain.ChartRepository) tea.Cmd {
	return NewMutateCommand(e.ctx, MutationUpdate, scope, repo).Execute()
}

// ExecuteDelete creates and executes a delete command
func (e *Executor) ExecuteDelete(scope domain.Scope, name string) tea.Cmd {
	return NewMutateCommand(e.ctx, MutationDelete, scope, domain.ChartRepository{Name: name}).Execute()
}

// ExecuteLoadOrganizations creates and executes a load organizations command
func (e *Executor) ExecuteLoadOrganizations() tea.Cmd {
	return NewLoadOrganizationsCommand(e.ctx).Execute()
}

// ExecuteSignIn creates and executes a sign in command
func (e *Executor) ExecuteSignIn(email, password string) tea.Cmd {
	return NewSignInCommand(e.ctx, email, password).Execute()
}

// ExecuteSignUp creates and executes a sign up command
func (e *Executor) ExecuteSignUp(user domain.NewUser) tea.Cmd {
	return NewSignUpCommand(e.ctx, user).Execute()
}

// ExecuteSignOut creates and executes a sign out command
func (e *Executor) ExecuteSignOut() tea.Cmd {
	return NewSignOutCommand(e.ctx).Execute()
}
