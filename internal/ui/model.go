package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"charthub/internal/config"
	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/hub"
	"charthub/internal/logic"
	"charthub/internal/scope"
	"charthub/internal/session"
	"charthub/internal/ui/commands"
	"charthub/internal/ui/dialogs"
	"charthub/internal/ui/handlers"
	"charthub/internal/ui/input"
	inputtypes "charthub/internal/ui/input/types"
	uilogic "charthub/internal/ui/logic"
	"charthub/internal/ui/menu"
	"charthub/internal/ui/state"
	"charthub/internal/ui/viewmodels"
	"charthub/internal/ui/views"
)

// Lines taken by everything but the cards: padding, header, prompt, scroll
// indicators, status and help bar
const reservedLines = 11

// Deps are the collaborators the model is built on
type Deps struct {
	Client   commands.Client
	Sessions *session.Store
	Selector *scope.Selector
}

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	state  *state.AppState // centralized state

	// UI-specific state not in AppState
	width       int
	height      int
	help        help.Model
	spinner     spinner.Model
	inPagerMode bool // tracks if we're currently in pager mode
	quitForced  bool
	statusTTL   time.Duration // how long success messages stay up

	// Stores shared with the rest of the program
	sessions *session.Store
	selector *scope.Selector
	list     *logic.RepositoryList

	// Session last seen by the UI, used to react to transitions only once
	seenStatus session.Status
	seenAlias  string

	// Handlers
	menu         *menu.Menu
	dialog       *dialogs.Form
	navigator    *uilogic.Navigator     // navigation and viewport handler
	renderer     *views.Renderer        // view renderer
	eventHandler *handlers.EventHandler // event processing handler
	viewModel    *viewmodels.ViewModel  // view model for rendering
	cmdExecutor  *commands.Executor     // command executor
	inputHandler *input.Handler         // input handling
	pager        *PagerOps
	helpRenderer *HelpRenderer

	// Commands queued by callbacks, flushed at the end of Update
	pending   []tea.Cmd
	stopWatch func()
}

// NewModel creates a new UI model
func NewModel(bus eventbus.EventBus, cfg *config.Config, deps Deps) *Model {
	appState := state.NewAppState()

	m := &Model{
		bus:          bus,
		config:       cfg,
		state:        appState,
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		sessions:     deps.Sessions,
		selector:     deps.Selector,
		seenStatus:   session.StatusLoading,
		statusTTL:    3 * time.Second,
		navigator:    uilogic.NewNavigator(),
		renderer:     views.NewRenderer(),
		inputHandler: input.New(),
		pager:        NewPagerOps(),
		helpRenderer: NewHelpRenderer(),
		cmdExecutor:  commands.NewExecutor(deps.Client, deps.Sessions, bus, cfg.Timeout),
	}

	m.list = logic.NewRepositoryList(deps.Client, deps.Selector.Active(),
		logic.WithBus(bus),
		logic.WithAuthErrorHandler(m.handleAuthError),
	)
	m.list.SetDispatcher(func(req logic.Request) {
		m.queue(m.cmdExecutor.ExecuteLoad(m.list, req))
	})
	m.stopWatch = m.list.Watch(deps.Selector)

	m.menu = menu.New(deps.Sessions, menu.Callbacks{
		OnSignIn: m.openSignIn,
		OnSignUp: m.openSignUp,
		OnSignOut: func() {
			m.state.SetStatus("Signing out...")
			m.queue(m.cmdExecutor.ExecuteSignOut())
		},
	})

	m.eventHandler = handlers.NewEventHandler(appState, deps.Sessions, func(session.Session) tea.Cmd {
		m.syncSession()
		return nil
	})

	// Create view model with a placeholder text input (actual one is in input handler)
	placeholderTextInput := textinput.New()
	m.viewModel = viewmodels.NewViewModel(appState, cfg, viewmodels.Sources{
		List:     m.list,
		Sessions: deps.Sessions,
		Menu:     m.menu,
	}, placeholderTextInput)
	m.viewModel.SetHelp(m.help)

	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// SaveOnExit reports whether the active scope should be persisted after the
// program exits
func (m *Model) SaveOnExit() bool {
	return !m.quitForced && m.config.UI.AutosaveOnExit
}

// Close stops watching the scope and cancels any load in flight
func (m *Model) Close() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
	m.cmdExecutor.CancelLoad()
}

// Init resolves the session; the list is loaded once it is known to be
// signed in
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.resolveSession())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	if len(m.pending) == 0 {
		return model, cmd
	}
	cmds := append(m.pending, cmd)
	m.pending = nil
	return model, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewModel.SetHelp(m.help)
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	default:
		// Handle non-keyboard messages
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			if m.inputHandler.TextInput() != nil {
				m.viewModel.UpdateTextInput(*m.inputHandler.TextInput())
			}
			return m, cmd
		}
		return m.handleNonKeyboardMsg(msg)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.processAction(inputtypes.QuitAction{Force: true})
	}

	// An open dialog takes every key
	if m.dialog != nil {
		result, cmd := m.dialog.Update(msg)
		switch result {
		case dialogs.ResultSubmit:
			return m, tea.Batch(cmd, m.submitDialog())
		case dialogs.ResultCancel:
			m.closeDialog()
		}
		return m, cmd
	}

	if m.state.ShowInfo {
		switch msg.String() {
		case "esc", "i", "q":
			m.state.ShowInfo = false
			m.state.InfoContent = ""
		}
		return m, nil
	}

	if m.state.ShowHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.state.ShowHelp = false
		}
		return m, nil
	}

	actions, cmd := m.inputHandler.HandleKey(msg, m.inputContext())

	cmds := []tea.Cmd{}
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	for _, action := range actions {
		if actionCmd := m.processAction(action); actionCmd != nil {
			cmds = append(cmds, actionCmd)
		}
	}

	// Update text input in view model if in text mode
	if m.inputHandler.TextInput() != nil {
		m.viewModel.UpdateTextInput(*m.inputHandler.TextInput())
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	m.viewModel.SetDimensions(m.width, m.height)
	m.viewModel.SetSpinner(m.spinner.View())
	m.viewModel.SetDialog(m.dialog)

	var viewModelMode viewmodels.InputMode
	deleteTarget := ""
	switch m.inputHandler.CurrentMode() {
	case inputtypes.ModeFilter:
		viewModelMode = viewmodels.InputModeFilter
	case inputtypes.ModeDeleteConfirm:
		viewModelMode = viewmodels.InputModeDeleteConfirm
		deleteTarget = m.inputHandler.DeleteTarget()
	case inputtypes.ModeMenu:
		viewModelMode = viewmodels.InputModeMenu
	case inputtypes.ModePicker:
		viewModelMode = viewmodels.InputModePicker
	default:
		viewModelMode = viewmodels.InputModeNormal
	}
	m.viewModel.SetInputMode(viewModelMode)
	m.viewModel.SetDeleteTarget(deleteTarget)

	if ti := m.inputHandler.TextInput(); ti != nil {
		m.viewModel.UpdateTextInput(*ti)
	}

	return m.renderer.Render(m.viewModel.BuildViewState())
}

func (m *Model) inputContext() *input.ModelContext {
	return &input.ModelContext{State: m.state}
}

// queue schedules a command from a callback that cannot return one
func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *Model) resolveSession() tea.Cmd {
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionResolvedMsg{err: m.sessions.Resolve(ctx)}
	}
}

// syncSession reacts to session transitions: becoming signed in loads the
// list of the active scope.
func (m *Model) syncSession() {
	current := m.sessions.Current()
	if current.Status == m.seenStatus && current.Alias() == m.seenAlias {
		return
	}
	m.seenStatus = current.Status
	m.seenAlias = current.Alias()

	log.Debug().Str("status", current.Status.String()).Str("alias", current.Alias()).Msg("Session changed")

	if current.Status == session.StatusAuthenticated {
		m.list.Reload()
		return
	}
	m.refreshVisible()
}

func (m *Model) signedIn() bool {
	return m.sessions.Current().Status == session.StatusAuthenticated
}

// requireSession gates actions on the hub. An anonymous user is asked to sign
// in; while the session is still being checked nothing happens.
func (m *Model) requireSession() bool {
	switch m.sessions.Current().Status {
	case session.StatusAuthenticated:
		return true
	case session.StatusAnonymous:
		m.openSignIn()
	default:
		m.state.SetStatus("Checking your session...")
	}
	return false
}

// cards is what the list may show: nothing unless signed in
func (m *Model) cards() []domain.ChartRepository {
	if !m.signedIn() {
		return nil
	}
	return m.list.Repositories()
}

// handleAuthError runs when the hub rejected a request because the session
// is gone
func (m *Model) handleAuthError() {
	m.sessions.Expire()
	m.syncSession()
	m.resetInputMode()
	m.openSignIn()
	m.state.SetError("Your session has expired, sign in to continue")
	if m.bus != nil {
		m.bus.Publish(eventbus.AuthRequiredEvent{})
	}
}

func (m *Model) resetInputMode() {
	actions, _ := m.inputHandler.ChangeMode(inputtypes.ModeNormal, m.inputContext())
	for _, action := range actions {
		m.queue(m.processAction(action))
	}
}

func (m *Model) openSignIn() {
	m.openDialog(dialogs.NewSignInForm())
}

func (m *Model) openSignUp() {
	m.openDialog(dialogs.NewSignUpForm())
}

func (m *Model) openDialog(form *dialogs.Form) {
	if logic.IsOpen(m.list.Modal()) {
		m.list.CloseModal()
	}
	m.dialog = form
	m.queue(textinput.Blink)
}

func (m *Model) closeDialog() {
	if m.dialog == nil {
		return
	}
	switch m.dialog.Kind() {
	case dialogs.KindCreateRepository, dialogs.KindEditRepository:
		m.list.CloseModal()
	}
	m.dialog = nil
}

func (m *Model) submitDialog() tea.Cmd {
	form := m.dialog
	switch form.Kind() {
	case dialogs.KindCreateRepository:
		return m.cmdExecutor.ExecuteAdd(m.list.Scope(), form.Repository())
	case dialogs.KindEditRepository:
		return m.cmdExecutor.ExecuteUpdate(m.list.Scope(), form.Repository())
	case dialogs.KindSignIn:
		email, password := form.Credentials()
		return m.cmdExecutor.ExecuteSignIn(email, password)
	case dialogs.KindSignUp:
		return m.cmdExecutor.ExecuteSignUp(form.NewUser())
	}
	return nil
}

func (m *Model) repositoryFormOpen() bool {
	if m.dialog == nil {
		return false
	}
	kind := m.dialog.Kind()
	return kind == dialogs.KindCreateRepository || kind == dialogs.KindEditRepository
}

// syncNavigatorState updates the navigator with current model state
func (m *Model) syncNavigatorState() {
	m.navigator.UpdateState(
		m.state.SelectedIndex,
		m.state.ViewportOffset,
		m.state.ViewportHeight,
		len(m.state.Visible),
	)
}

// refreshVisible recomputes the visible cards from the loaded list
func (m *Model) refreshVisible() {
	m.state.SetRepositories(m.cards())
	m.ensureSelectedVisible()
}

func (m *Model) ensureSelectedVisible() {
	m.syncNavigatorState()
	m.state.SelectedIndex, m.state.ViewportOffset = m.navigator.SetSelectedIndex(m.state.SelectedIndex)
}

// updateViewportHeight calculates how many cards fit on screen
func (m *Model) updateViewportHeight() {
	m.state.ViewportHeight = (m.height - reservedLines) / views.CardHeight
	if m.state.ViewportHeight < 1 {
		m.state.ViewportHeight = 1
	}
	m.ensureSelectedVisible()
}

// buildRepoInfo renders the details of a repository. The first line is the
// title so the card stays highlighted behind the popup.
func (m *Model) buildRepoInfo(repo domain.ChartRepository) string {
	var b strings.Builder
	b.WriteString(repo.Title())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Name:         %s\n", repo.Name)
	if repo.DisplayName != "" {
		fmt.Fprintf(&b, "Display name: %s\n", repo.DisplayName)
	}
	fmt.Fprintf(&b, "URL:          %s\n", repo.URL)
	if repo.ID != "" {
		fmt.Fprintf(&b, "ID:           %s\n", repo.ID)
	}
	if sc := m.list.Scope(); sc.IsPersonal() {
		b.WriteString("Owner:        you")
	} else {
		fmt.Fprintf(&b, "Owner:        organization %s", sc.Org)
	}
	return b.String()
}

// fetchPager returns a command that shows content using ov pager
func (m *Model) fetchPager(content string) tea.Cmd {
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.pager.program.Send(pauseRenderingMsg{})

		err := m.pager.ShowInPager(content)

		// Send resume message to restart rendering
		m.pager.program.Send(resumeRenderingMsg{})

		return pagerMsg{err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.syncNavigatorState()
		var sel, off int
		switch a.Direction {
		case "up":
			sel, off = m.navigator.Move(-1)
		case "down":
			sel, off = m.navigator.Move(1)
		case "pageup":
			sel, off = m.navigator.PageUp()
		case "pagedown":
			sel, off = m.navigator.PageDown()
		case "home":
			sel, off = m.navigator.SetSelectedIndex(0)
		case "end":
			sel, off = m.navigator.SetSelectedIndex(m.navigator.GetMaxIndex())
		default:
			return nil
		}
		m.state.SelectedIndex, m.state.ViewportOffset = sel, off

	case inputtypes.UpdateTextAction:
		m.state.ApplyFilter(a.Text, m.cards())
		m.ensureSelectedVisible()

	case inputtypes.SubmitTextAction:
		m.state.ApplyFilter(strings.TrimSpace(a.Text), m.cards())
		m.ensureSelectedVisible()

	case inputtypes.CancelTextAction, inputtypes.ClearFilterAction:
		m.state.ApplyFilter("", m.cards())
		m.ensureSelectedVisible()

	case inputtypes.RefreshAction:
		if !m.requireSession() {
			return nil
		}
		m.state.SetStatus("Refreshing...")
		m.list.Reload()

	case inputtypes.AddRepositoryAction:
		if !m.requireSession() {
			return nil
		}
		m.list.OpenCreateModal()
		m.dialog = dialogs.NewRepositoryForm(m.list.Modal())
		return textinput.Blink

	case inputtypes.EditRepositoryAction:
		if !m.requireSession() {
			return nil
		}
		repo, ok := m.list.Get(a.Name)
		if !ok {
			return nil
		}
		m.list.OpenEditModal(repo)
		m.dialog = dialogs.NewRepositoryForm(m.list.Modal())
		return textinput.Blink

	case inputtypes.DeleteRepositoryAction:
		if a.Name == "" || !m.requireSession() {
			return nil
		}
		m.state.SetStatus(fmt.Sprintf("Deleting %s...", a.Name))
		return m.cmdExecutor.ExecuteDelete(m.list.Scope(), a.Name)

	case inputtypes.ShowDetailsAction:
		if !m.requireSession() {
			return nil
		}
		repo, ok := m.list.Get(a.Name)
		if !ok {
			return nil
		}
		if m.pager.Available() {
			return m.fetchPager(m.buildRepoInfo(repo))
		}
		m.state.InfoContent = m.buildRepoInfo(repo)
		m.state.ShowInfo = true

	case inputtypes.OpenPickerAction:
		if !m.requireSession() {
			return nil
		}
		m.state.LoadingScopes = true
		return m.cmdExecutor.ExecuteLoadOrganizations()

	case inputtypes.PickerMoveAction:
		m.state.MovePicker(a.Delta)

	case inputtypes.PickerSelectAction:
		sc, ok := m.state.PickedScope(a.Index)
		if !ok {
			return nil
		}
		// The list watches the selector and reloads on change
		if !m.selector.Set(sc) {
			m.state.SetStatus("Scope unchanged")
		}

	case inputtypes.ClosePickerAction:
		m.state.ClosePicker()

	case inputtypes.OpenMenuAction:
		m.menu.Open()

	case inputtypes.CloseMenuAction:
		m.menu.Close()

	case inputtypes.MenuMoveAction:
		m.menu.Move(a.Delta)

	case inputtypes.MenuActivateAction:
		m.menu.Activate()

	case inputtypes.ToggleHelpAction:
		m.state.ShowHelp = !m.state.ShowHelp

	case inputtypes.HelpPagerAction:
		if m.pager.Available() {
			return m.fetchPager(m.helpRenderer.RenderHelpContentPlain())
		}
		m.state.ShowHelp = true

	case inputtypes.QuitAction:
		m.quitForced = a.Force
		m.Close()
		return tea.Quit
	}

	return nil
}

// handleNonKeyboardMsg handles non-keyboard messages
func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		// Process domain events
		return m, m.eventHandler.HandleEvent(msg.Event)

	case spinner.TickMsg:
		// Don't keep ticking while the pager owns the terminal
		if m.inPagerMode {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionResolvedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Msg("Failed to resolve session")
			m.state.SetError(fmt.Sprintf("Could not reach the hub: %v", msg.err))
		} else if !m.signedIn() {
			m.state.SetStatus("Sign in to see your chart repositories (m)")
		}
		m.syncSession()
		return m, nil

	case commands.ListLoadedMsg:
		if !m.list.Finish(msg.Result) {
			return m, nil
		}
		m.refreshVisible()
		if err := m.list.LastErr(); err != nil {
			m.state.SetError(fmt.Sprintf("Failed to load chart repositories: %v", err))
		} else if m.state.StatusMessage == "Refreshing..." {
			m.state.SetStatus("")
		}
		return m, nil

	case commands.MutationDoneMsg:
		return m, m.handleMutationDone(msg)

	case commands.OrganizationsLoadedMsg:
		m.state.LoadingScopes = false
		if msg.Err != nil {
			if hub.IsLoginRedirect(msg.Err) {
				m.handleAuthError()
				return m, nil
			}
			log.Error().Err(msg.Err).Msg("Failed to list organizations")
			m.state.SetError(fmt.Sprintf("Failed to list organizations: %v", msg.Err))
			return m, nil
		}
		m.state.OpenPicker(msg.Organizations, m.selector.Active())
		actions, cmd := m.inputHandler.ChangeMode(inputtypes.ModePicker, m.inputContext())
		for _, action := range actions {
			m.queue(m.processAction(action))
		}
		return m, cmd

	case commands.SignInDoneMsg:
		if msg.Err != nil {
			text := msg.Err.Error()
			if hub.IsLoginRedirect(msg.Err) {
				text = "Invalid email or password"
			}
			if m.dialog != nil {
				m.dialog.SetError(text)
			} else {
				m.state.SetError(text)
			}
			return m, nil
		}
		m.dialog = nil
		m.state.SetStatus(fmt.Sprintf("Signed in as %s", m.sessions.Current().Alias()))
		m.syncSession()
		return m, clearStatusAfter(m.statusTTL)

	case commands.SignUpDoneMsg:
		if msg.Err != nil {
			if m.dialog != nil {
				m.dialog.SetError(msg.Err.Error())
			} else {
				m.state.SetError(msg.Err.Error())
			}
			return m, nil
		}
		m.dialog = nil
		m.state.SetStatus(fmt.Sprintf("Check %s to verify your account, then sign in", msg.Email))
		return m, nil

	case commands.SignOutDoneMsg:
		if msg.Err != nil {
			log.Error().Err(msg.Err).Msg("Failed to sign out")
			m.state.SetError(fmt.Sprintf("Failed to sign out: %v", msg.Err))
			return m, nil
		}
		m.list.Clear()
		m.refreshVisible()
		m.state.SetStatus("Signed out")
		m.syncSession()
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			// Pager failed: log only; do not surface in status bar
			log.Error().Err(msg.err).Msg("Pager failed")
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, m.spinner.Tick

	case clearStatusMsg:
		m.state.SetStatus("")
		return m, nil
	}

	// Cursor blinks of the open dialog
	if m.dialog != nil {
		_, cmd := m.dialog.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMutationDone(msg commands.MutationDoneMsg) tea.Cmd {
	if msg.Err != nil {
		if hub.IsLoginRedirect(msg.Err) {
			m.handleAuthError()
			return nil
		}
		log.Error().Err(msg.Err).Str("action", msg.Action).Str("name", msg.Name).Msg("Chart repository change failed")

		text := mutationErrorText(msg.Err)
		if msg.Action != commands.MutationDelete && m.repositoryFormOpen() {
			m.dialog.SetError(text)
			return nil
		}
		m.state.SetError(text)
		return nil
	}

	if msg.Action != commands.MutationDelete && m.repositoryFormOpen() {
		m.closeDialog()
	}
	m.state.SetStatus(handlers.MutationStatus(msg.Action, msg.Name))
	m.list.Succeeded()
	return clearStatusAfter(m.statusTTL)
}

func mutationErrorText(err error) string {
	var hubErr *hub.Error
	if errors.As(err, &hubErr) && hubErr.Message != "" {
		return hubErr.Message
	}
	return err.Error()
}
