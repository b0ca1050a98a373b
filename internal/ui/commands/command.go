package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/logic"
)

// Client is the part of the hub API the TUI mutates repositories with
type Client interface {
	logic.Fetcher
	AddChartRepository(ctx context.Context, scope domain.Scope, repo domain.ChartRepository) error
	UpdateChartRepository(ctx context.Context, scope domain.Scope, repo domain.ChartRepository) error
	DeleteChartRepository(ctx context.Context, scope domain.Scope, name string) error
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
}

// Sessions performs session changes
type Sessions interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, user domain.NewUser) error
	SignOut(ctx context.Context) error
}

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// CommandContext provides context for command execution
type CommandContext struct {
	Client   Client
	Sessions Sessions
	Bus      eventbus.EventBus
	Timeout  time.Duration
}

func (c *CommandContext) newContext() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// Mutation names carried by MutationDoneMsg
const (
	MutationAdd    = "add"
	MutationUpdate = "update"
	MutationDelete = "delete"
)

// MutationDoneMsg reports the outcome of an add, update or delete
type MutationDoneMsg struct {
	Action string
	Scope  domain.Scope
	Name   string
	Err    error
}

// ListLoadedMsg carries the outcome of a list load
type ListLoadedMsg struct {
	Result logic.Result
}

// OrganizationsLoadedMsg carries the organizations for the scope picker
type OrganizationsLoadedMsg struct {
	Organizations []domain.Organization
	Err           error
}

// SignInDoneMsg reports the outcome of a sign in
type SignInDoneMsg struct {
	Err error
}

// SignUpDoneMsg reports the outcome of a sign up
type SignUpDoneMsg struct {
	Email string
	Err   error
}

// SignOutDoneMsg reports the outcome of a sign out
type SignOutDoneMsg struct {
	Err error
}

// MutateCommand adds, updates or deletes a chart repository
type MutateCommand struct {
	ctx    *CommandContext
	action string
	scope  domain.Scope
	repo   domain.ChartRepository
}

// NewMutateCommand creates a new mutate command. Delete only uses repo.Name.
func NewMutateCommand(ctx *CommandContext, action string, scope domain.Scope, repo domain.ChartRepository) *MutateCommand {
	return &MutateCommand{
		ctx:    ctx,
		action: action,
		scope:  scope,
		repo:   repo,
	}
}

// Execute performs the mutation
func (c *MutateCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.newContext()
		defer cancel()

		var err error
		switch c.action {
		case MutationAdd:
			err = c.ctx.Client.AddChartRepository(ctx, c.scope, c.repo)
		case MutationUpdate:
			err = c.ctx.Client.UpdateChartRepository(ctx, c.scope, c.repo)
		case MutationDelete:
			err = c.ctx.Client.DeleteChartRepository(ctx, c.scope, c.repo.Name)
		default:
			err = fmt.Errorf("unknown mutation %q", c.action)
		}

		if err == nil && c.ctx.Bus != nil {
			c.ctx.Bus.Publish(eventbus.RepositoryMutatedEvent{Scope: c.scope, Name: c.repo.Name, Action: c.action})
		}
		return MutationDoneMsg{Action: c.action, Scope: c.scope, Name: c.repo.Name, Err: err}
	}
}

// LoadOrganizationsCommand lists the organizations of the user
type LoadOrganizationsCommand struct {
	ctx *CommandContext
}

// NewLoadOrganizationsCommand creates a new load organizations command
func NewLoadOrganizationsCommand(ctx *CommandContext) *LoadOrganizationsCommand {
	return &LoadOrganizationsCommand{ctx: ctx}
}

// Execute lists the organizations
func (c *LoadOrganizationsCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.newContext()
		defer cancel()
		orgs, err := c.ctx.Client.ListOrganizations(ctx)
		return OrganizationsLoadedMsg{Organizations: orgs, Err: err}
	}
}

// SignInCommand signs in with email and password
type SignInCommand struct {
	ctx      *CommandContext
	email    string
	password string
}

// NewSignInCommand creates a new sign in command
func NewSignInCommand(ctx *CommandContext, email, password string) *SignInCommand {
	return &SignInCommand{ctx: ctx, email: email, password: password}
}

// Execute signs in
func (c *SignInCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.newContext()
		defer cancel()
		return SignInDoneMsg{Err: c.ctx.Sessions.SignIn(ctx, c.email, c.password)}
	}
}

// SignUpCommand registers a new user
type SignUpCommand struct {
	ctx  *CommandContext
	user domain.NewUser
}

// NewSignUpCommand creates a new sign up command
func NewSignUpCommand(ctx *CommandContext, user domain.NewUser) *SignUpCommand {
	return &SignUpCommand{ctx: ctx, user: user}
}

// Execute registers the user
func (c *SignUpCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.newContext()
		defer cancel()
		return SignUpDoneMsg{Email: c.user.Email, Err: c.ctx.Sessions.SignUp(ctx, c.user)}
	}
}

// SignOutCommand ends the session
type SignOutCommand struct {
	ctx *CommandContext
}

// NewSignOutCommand creates a new sign out command
func NewSignOutCommand(ctx *CommandContext) *SignOutCommand {
	return &SignOutCommand{ctx: ctx}
}

// Execute signs out
func (c *SignOutCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.newContext()
		defer cancel()
		return SignOutDoneMsg{Err: c.ctx.Sessions.SignOut(ctx)}
	}
}
