package ui

import (
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charthub/internal/config"
	"charthub/internal/domain"
	"charthub/internal/hub"
	"charthub/internal/hubtest"
	"charthub/internal/logic"
	"charthub/internal/scope"
	"charthub/internal/session"
	"charthub/internal/ui/commands"
	"charthub/internal/ui/dialogs"
	inputtypes "charthub/internal/ui/input/types"
	"charthub/internal/ui/views"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "secret"
)

type harness struct {
	t   *testing.T
	srv *hubtest.Server
	m   *Model
}

// newHarness starts a hub with alice as a member of acme
func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := hubtest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("alice", aliceEmail, alicePassword)
	srv.AddOrganization("acme", "Acme Inc", aliceEmail)
	return &harness{t: t, srv: srv}
}

// start builds the model and runs Init. Call it once the hub is seeded.
// signedIn decides whether the client starts with a valid session.
func (h *harness) start(initial domain.Scope, signedIn bool) *Model {
	h.t.Helper()
	h.build(initial, signedIn)
	h.run(h.m.Init())
	return h.m
}

// build creates the model without resolving the session
func (h *harness) build(initial domain.Scope, signedIn bool) *Model {
	h.t.Helper()
	var options []hub.ClientOption
	if signedIn {
		options = append(options, hub.WithSessionCookie(h.srv.NewSession(aliceEmail)))
	}
	client, err := hub.NewClient(h.srv.URL, options...)
	require.NoError(h.t, err)

	h.m = NewModel(nil, config.DefaultConfig(), Deps{
		Client:   client,
		Sessions: session.NewStore(client),
		Selector: scope.NewSelector(initial),
	})
	h.m.statusTTL = time.Millisecond
	h.t.Cleanup(h.m.Close)

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h.m
}

func (h *harness) send(msg tea.Msg) {
	_, cmd := h.m.Update(msg)
	h.run(cmd)
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

// run executes cmd and feeds back the messages the model acts on. Cursor
// blinks and spinner ticks are dropped so runs always terminate.
func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case sessionResolvedMsg, clearStatusMsg,
			commands.ListLoadedMsg, commands.MutationDoneMsg, commands.OrganizationsLoadedMsg,
			commands.SignInDoneMsg, commands.SignUpDoneMsg, commands.SignOutDoneMsg:
			h.send(msg)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}

	results := make([][]tea.Msg, len(batch))
	var wg sync.WaitGroup
	for i, c := range batch {
		wg.Add(1)
		go func(i int, c tea.Cmd) {
			defer wg.Done()
			results[i] = collect(c)
		}(i, c)
	}
	wg.Wait()

	var out []tea.Msg
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func repo(name string) domain.ChartRepository {
	return domain.ChartRepository{Name: name, URL: "https://charts.example.com/" + name}
}

func names(repos []domain.ChartRepository) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.Name)
	}
	return out
}

func TestInitialMountRendersOneCard(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	assert.Equal(t, session.StatusAuthenticated, m.sessions.Current().Status)
	assert.Equal(t, logic.StatePopulated, m.list.View())
	assert.Equal(t, []string{"repo1"}, names(m.state.Visible))
	assert.Equal(t, 1, h.srv.ListCalls())

	view := m.View()
	assert.Contains(t, view, "repo1")
	assert.Contains(t, view, "org acme")
	assert.Contains(t, view, "alice")
}

func TestEmptyListShowsCallToAction(t *testing.T) {
	h := newHarness(t)
	m := h.start(domain.OrgScope("acme"), true)

	assert.Equal(t, logic.StateEmpty, m.list.View())
	view := m.View()
	assert.Contains(t, view, "No chart repositories found")
	assert.Contains(t, view, views.EmptyStateCallToAction)

	h.press("a")
	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogs.KindCreateRepository, m.dialog.Kind())
	assert.Equal(t, logic.ModalCreate{}, m.list.Modal())
}

func TestAnonymousDoesNotLoad(t *testing.T) {
	h := newHarness(t)
	m := h.start(domain.PersonalScope(), false)

	assert.Equal(t, session.StatusAnonymous, m.sessions.Current().Status)
	assert.Equal(t, 0, h.srv.ListCalls())
	assert.Contains(t, m.View(), "Sign in to manage your chart repositories")

	// mutating keys lead to sign in
	h.press("a")
	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogs.KindSignIn, m.dialog.Kind())
	assert.Equal(t, logic.ModalClosed{}, m.list.Modal())
}

func TestAddRepositoryReloadsList(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)
	calls := h.srv.ListCalls()

	h.press("a", "bitnami", "tab", "Bitnami", "tab", "https://charts.bitnami.com/bitnami", "enter")

	assert.Nil(t, m.dialog)
	assert.Equal(t, logic.ModalClosed{}, m.list.Modal())
	assert.Equal(t, calls+1, h.srv.ListCalls())
	assert.Equal(t, []string{"repo1", "bitnami"}, names(m.state.Visible))
	assert.Equal(t, []string{"repo1", "bitnami"}, names(h.srv.OrgRepositories("acme")))
}

func TestAddRepositoryErrorStaysInForm(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)
	calls := h.srv.ListCalls()

	h.srv.FailNext(500, 1)
	h.press("a", "bitnami", "tab", "tab", "https://charts.bitnami.com/bitnami", "enter")

	require.NotNil(t, m.dialog)
	assert.NotEmpty(t, m.dialog.Err())
	assert.Equal(t, logic.ModalCreate{}, m.list.Modal())
	assert.Equal(t, calls, h.srv.ListCalls())

	h.press("esc")
	assert.Nil(t, m.dialog)
	assert.Equal(t, logic.ModalClosed{}, m.list.Modal())
	assert.Equal(t, calls, h.srv.ListCalls(), "closing the form does not reload")
}

func TestEditRepository(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.press("e")
	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogs.KindEditRepository, m.dialog.Kind())

	h.press("Repo One", "tab", "enter")
	assert.Nil(t, m.dialog)

	stored := h.srv.OrgRepositories("acme")
	require.Len(t, stored, 1)
	assert.Equal(t, "Repo One", stored[0].DisplayName)
	assert.Equal(t, "Repo One", m.state.Visible[0].DisplayName)
}

func TestDeleteAfterConfirmation(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.press("d")
	assert.Equal(t, inputtypes.ModeDeleteConfirm, m.inputHandler.CurrentMode())
	assert.Contains(t, m.View(), "Delete chart repository 'repo1'?")

	h.press("n")
	assert.Equal(t, inputtypes.ModeNormal, m.inputHandler.CurrentMode())
	assert.Len(t, h.srv.OrgRepositories("acme"), 1)

	h.press("d", "y")
	assert.Empty(t, h.srv.OrgRepositories("acme"))
	assert.Equal(t, logic.StateEmpty, m.list.View())
}

func TestExpiredSessionOpensSignIn(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.srv.ExpireSessions()
	h.press("r")

	require.NotNil(t, m.dialog)
	assert.Equal(t, dialogs.KindSignIn, m.dialog.Kind())
	assert.Equal(t, session.StatusAnonymous, m.sessions.Current().Status)
	assert.Equal(t, []string{"repo1"}, names(m.list.Repositories()), "list is left as it was")
	assert.True(t, m.state.StatusIsError)
}

func TestKeysWaitForSessionCheck(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.build(domain.OrgScope("acme"), true)
	require.Equal(t, session.StatusLoading, m.sessions.Current().Status)

	h.press("a", "r", "o")
	assert.Nil(t, m.dialog)
	assert.Equal(t, logic.ModalClosed{}, m.list.Modal())
	assert.False(t, m.state.LoadingScopes)
	assert.Equal(t, 0, h.srv.ListCalls())

	h.run(m.Init())
	assert.Equal(t, session.StatusAuthenticated, m.sessions.Current().Status)
	assert.Nil(t, m.dialog)
	assert.Equal(t, []string{"repo1"}, names(m.state.Visible))
}

func TestCardKeysNeedSession(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.srv.ExpireSessions()
	h.press("r", "esc")
	require.Nil(t, m.dialog)
	assert.Equal(t, []string{"repo1"}, names(m.list.Repositories()))
	assert.Empty(t, m.state.Visible, "cards are hidden while signed out")

	h.press("e")
	assert.Nil(t, m.dialog)
	assert.Equal(t, logic.ModalClosed{}, m.list.Modal())

	h.press("d")
	assert.Equal(t, inputtypes.ModeNormal, m.inputHandler.CurrentMode())

	h.press("i")
	assert.False(t, m.state.ShowInfo)

	h.press("/", "repo", "enter")
	assert.Empty(t, m.state.Visible)
}

func TestLoadErrorCollapsesToEmpty(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.srv.FailNext(500, 1)
	h.press("r")

	assert.Equal(t, logic.StateEmpty, m.list.View())
	assert.Error(t, m.list.LastErr())
	assert.True(t, m.state.StatusIsError)
	assert.Nil(t, m.dialog)
}

func TestMenuSignInLoadsList(t *testing.T) {
	h := newHarness(t)
	h.srv.SetUserRepositories(aliceEmail, repo("mine"))
	m := h.start(domain.PersonalScope(), false)

	h.press("m")
	assert.True(t, m.menu.IsOpen())
	assert.Contains(t, m.View(), "Sign in")

	h.press("enter")
	assert.False(t, m.menu.IsOpen())
	require.NotNil(t, m.dialog)
	require.Equal(t, dialogs.KindSignIn, m.dialog.Kind())

	h.press(aliceEmail, "tab", alicePassword, "enter")

	assert.Nil(t, m.dialog)
	assert.Equal(t, session.StatusAuthenticated, m.sessions.Current().Status)
	assert.Equal(t, "alice", m.sessions.Current().Alias())
	assert.Equal(t, []string{"mine"}, names(m.state.Visible))
}

func TestWrongPasswordKeepsDialog(t *testing.T) {
	h := newHarness(t)
	m := h.start(domain.PersonalScope(), false)

	h.press("m", "enter", aliceEmail, "tab", "wrong", "enter")

	require.NotNil(t, m.dialog)
	assert.Equal(t, "Invalid email or password", m.dialog.Err())
	assert.Equal(t, session.StatusAnonymous, m.sessions.Current().Status)
}

func TestMenuSignOutClearsList(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("repo1"))
	m := h.start(domain.OrgScope("acme"), true)

	h.press("m")
	assert.Contains(t, m.View(), "Signed in as alice")
	h.press("enter")

	assert.Equal(t, session.StatusAnonymous, m.sessions.Current().Status)
	assert.Empty(t, m.list.Repositories())
	assert.Empty(t, m.state.Visible)
	assert.Contains(t, m.View(), "Sign in to manage your chart repositories")
}

func TestScopePickerReloadsList(t *testing.T) {
	h := newHarness(t)
	h.srv.SetUserRepositories(aliceEmail, repo("mine"))
	h.srv.SetOrgRepositories("acme", repo("shared"))
	m := h.start(domain.PersonalScope(), true)
	require.Equal(t, []string{"mine"}, names(m.state.Visible))

	h.press("o")
	assert.Equal(t, inputtypes.ModePicker, m.inputHandler.CurrentMode())
	assert.Equal(t, []string{"Personal", "Acme Inc (acme)"}, m.state.PickerLabels)
	assert.Equal(t, 0, m.state.PickerIndex)

	h.press("down", "enter")

	assert.Equal(t, inputtypes.ModeNormal, m.inputHandler.CurrentMode())
	assert.Empty(t, m.state.PickerLabels)
	assert.Equal(t, domain.OrgScope("acme"), m.selector.Active())
	assert.Equal(t, domain.OrgScope("acme"), m.list.Scope())
	assert.Equal(t, []string{"shared"}, names(m.state.Visible))
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.srv.SetUserRepositories(aliceEmail, repo("mine"))
	h.srv.SetOrgRepositories("acme", repo("shared"))
	m := h.start(domain.PersonalScope(), true)

	// a refresh of the personal scope is still in flight...
	_, stale := m.Update(keyMsg("r"))
	require.NotNil(t, stale)

	// ...when the scope changes
	m.selector.Set(domain.OrgScope("acme"))
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, []string{"shared"}, names(m.state.Visible))

	h.run(stale)
	assert.Equal(t, []string{"shared"}, names(m.state.Visible))
	assert.Equal(t, domain.OrgScope("acme"), m.list.Scope())
}

func TestFilterNarrowsVisibleCards(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("bitnami"), repo("jetstack"), repo("bitnami-labs"))
	m := h.start(domain.OrgScope("acme"), true)

	h.press("/", "bit")
	assert.Equal(t, inputtypes.ModeFilter, m.inputHandler.CurrentMode())
	assert.Equal(t, []string{"bitnami", "bitnami-labs"}, names(m.state.Visible))

	h.press("enter")
	assert.Equal(t, inputtypes.ModeNormal, m.inputHandler.CurrentMode())
	assert.Equal(t, "bit", m.state.FilterQuery)
	assert.Contains(t, m.View(), "[Filter: bit]")

	h.press("esc")
	assert.Len(t, m.state.Visible, 3)
}

func TestNavigationAndDetails(t *testing.T) {
	h := newHarness(t)
	h.srv.SetOrgRepositories("acme", repo("a"), repo("b"), repo("c"))
	m := h.start(domain.OrgScope("acme"), true)

	h.press("j", "j")
	assert.Equal(t, "c", m.state.SelectedName())
	h.press("k")
	assert.Equal(t, "b", m.state.SelectedName())

	h.press("i")
	assert.True(t, m.state.ShowInfo)
	assert.Contains(t, m.state.InfoContent, "https://charts.example.com/b")
	assert.Contains(t, m.state.InfoContent, "organization acme")

	h.press("esc")
	assert.False(t, m.state.ShowInfo)
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	m := h.start(domain.PersonalScope(), false)

	_, cmd := m.Update(keyMsg("q"))
	assert.Contains(t, collect(cmd), tea.Msg(tea.QuitMsg{}))
	assert.True(t, m.SaveOnExit())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Contains(t, collect(cmd), tea.Msg(tea.QuitMsg{}))
	assert.False(t, m.SaveOnExit())
}
