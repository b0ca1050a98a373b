package hub_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charthub/internal/domain"
	"charthub/internal/hub"
	"charthub/internal/hubtest"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newSignedInClient(t *testing.T) (*hubtest.Server, *hub.Client) {
	t.Helper()

	srv := hubtest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("alice", "alice@example.com", "secret")

	c, err := hub.NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "alice@example.com", "secret"))
	return srv, c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := hub.NewClient("ftp://hub.example.com")
	assert.Error(t, err)

	_, err = hub.NewClient("://nope")
	assert.Error(t, err)

	c, err := hub.NewClient("https://hub.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com", c.BaseURL())
}

func TestLoginStoresSessionCookie(t *testing.T) {
	_, c := newSignedInClient(t)

	assert.NotEmpty(t, c.SessionCookie())

	alias, err := c.GetUserAlias(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", alias)
}

func TestLoginWithWrongPassword(t *testing.T) {
	srv := hubtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "alice@example.com", "secret")

	c, err := hub.NewClient(srv.URL)
	require.NoError(t, err)

	err = c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, hub.IsLoginRedirect(err))
	assert.Empty(t, c.SessionCookie())
}

func TestUnauthenticatedRequestIsLoginRedirect(t *testing.T) {
	srv := hubtest.NewServer()
	defer srv.Close()

	c, err := hub.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.ListChartRepositories(context.Background(), domain.PersonalScope())
	require.Error(t, err)
	assert.True(t, hub.IsLoginRedirect(err))
	assert.ErrorIs(t, err, hub.ErrLoginRedirect)

	var hubErr *hub.Error
	require.True(t, errors.As(err, &hubErr))
	assert.Equal(t, http.StatusUnauthorized, hubErr.StatusCode)
	assert.Equal(t, hub.StatusTextLoginRedirect, hubErr.StatusText)
}

func TestIsLoginRedirectMatchesExactly(t *testing.T) {
	assert.False(t, hub.IsLoginRedirect(nil))
	assert.False(t, hub.IsLoginRedirect(errors.New("ErrLoginRedirect")))
	assert.False(t, hub.IsLoginRedirect(&hub.Error{StatusCode: 401, StatusText: "errloginredirect"}))
	assert.True(t, hub.IsLoginRedirect(&hub.Error{StatusCode: 401, StatusText: "ErrLoginRedirect"}))
}

func TestSessionCookieRestore(t *testing.T) {
	srv := hubtest.NewServer()
	defer srv.Close()
	srv.AddUser("bob", "bob@example.com", "pw")
	sid := srv.NewSession("bob@example.com")

	c, err := hub.NewClient(srv.URL, hub.WithSessionCookie(sid))
	require.NoError(t, err)
	assert.Equal(t, sid, c.SessionCookie())

	alias, err := c.GetUserAlias(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", alias)
}

func TestChartRepositoryLifecycle(t *testing.T) {
	_, c := newSignedInClient(t)
	ctx := context.Background()
	scope := domain.PersonalScope()

	repos, err := c.ListChartRepositories(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.NotNil(t, repos)

	require.NoError(t, c.AddChartRepository(ctx, scope, domain.ChartRepository{
		Name: "repo1", DisplayName: "Repo 1", URL: "https://charts.example.com/one",
	}))
	require.NoError(t, c.AddChartRepository(ctx, scope, domain.ChartRepository{
		Name: "repo2", URL: "https://charts.example.com/two",
	}))

	repos, err = c.ListChartRepositories(ctx, scope)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "repo1", repos[0].Name)
	assert.Equal(t, "repo2", repos[1].Name)
	assert.NotEmpty(t, repos[0].ID)

	require.NoError(t, c.UpdateChartRepository(ctx, scope, domain.ChartRepository{
		Name: "repo2", DisplayName: "Second", URL: "https://charts.example.com/2",
	}))
	repos, err = c.ListChartRepositories(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "Second", repos[1].DisplayName)
	assert.Equal(t, "https://charts.example.com/2", repos[1].URL)

	require.NoError(t, c.DeleteChartRepository(ctx, scope, "repo1"))
	repos, err = c.ListChartRepositories(ctx, scope)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "repo2", repos[0].Name)

	err = c.DeleteChartRepository(ctx, scope, "repo1")
	assert.ErrorIs(t, err, hub.ErrNotFound)
}

func TestAddDuplicateChartRepository(t *testing.T) {
	_, c := newSignedInClient(t)
	ctx := context.Background()
	repo := domain.ChartRepository{Name: "repo1", URL: "https://charts.example.com"}

	require.NoError(t, c.AddChartRepository(ctx, domain.PersonalScope(), repo))
	err := c.AddChartRepository(ctx, domain.PersonalScope(), repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddInvalidChartRepository(t *testing.T) {
	_, c := newSignedInClient(t)

	err := c.AddChartRepository(context.Background(), domain.PersonalScope(), domain.ChartRepository{Name: "x"})
	assert.ErrorIs(t, err, hub.ErrBadRequest)
}

func TestOrganizationScope(t *testing.T) {
	srv, c := newSignedInClient(t)
	ctx := context.Background()
	srv.AddOrganization("acme", "Acme Inc", "alice@example.com")
	srv.AddOrganization("globex", "Globex")
	srv.SetOrgRepositories("acme", domain.ChartRepository{Name: "stable", URL: "https://acme.example.com"})

	orgs, err := c.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Organization{{Name: "acme", DisplayName: "Acme Inc"}}, orgs)

	repos, err := c.ListChartRepositories(ctx, domain.OrgScope("acme"))
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "stable", repos[0].Name)

	_, err = c.ListChartRepositories(ctx, domain.OrgScope("globex"))
	assert.ErrorIs(t, err, hub.ErrPermissionDenied)

	_, err = c.ListChartRepositories(ctx, domain.OrgScope("missing"))
	assert.ErrorIs(t, err, hub.ErrNotFound)
}

func TestServerErrorIsTyped(t *testing.T) {
	srv, c := newSignedInClient(t)
	srv.FailNext(http.StatusInternalServerError, 1)

	_, err := c.ListChartRepositories(context.Background(), domain.PersonalScope())
	require.Error(t, err)
	assert.ErrorIs(t, err, hub.ErrServerError)
	assert.False(t, hub.IsLoginRedirect(err))
	assert.Contains(t, err.Error(), "injected failure")
}

func TestLogoutClearsSession(t *testing.T) {
	_, c := newSignedInClient(t)
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.SessionCookie())

	_, err := c.GetUserAlias(ctx)
	assert.True(t, hub.IsLoginRedirect(err))

	// Logging out again with no session is not an error
	assert.NoError(t, c.Logout(ctx))
}

func TestRegisterUser(t *testing.T) {
	srv := hubtest.NewServer()
	defer srv.Close()
	c, err := hub.NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	user := domain.NewUser{Alias: "carol", Email: "carol@example.com", Password: "pw"}
	require.NoError(t, c.RegisterUser(ctx, user))

	err = c.RegisterUser(ctx, user)
	assert.ErrorIs(t, err, hub.ErrBadRequest)

	// unverified accounts cannot sign in yet
	err = c.Login(ctx, "carol@example.com", "pw")
	assert.True(t, hub.IsLoginRedirect(err))
}

func TestCanceledContext(t *testing.T) {
	_, c := newSignedInClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListChartRepositories(ctx, domain.PersonalScope())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNetworkError(t *testing.T) {
	srv := hubtest.NewServer()
	url := srv.URL
	srv.Close()

	c, err := hub.NewClient(url, hub.WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.ListChartRepositories(context.Background(), domain.PersonalScope())
	assert.ErrorIs(t, err, hub.ErrNetworkError)
}

func TestOversizedResponseIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"` + strings.Repeat("x", 5<<20) + `"}]`))
	}))
	defer srv.Close()

	c, err := hub.NewClient(srv.URL)
	require.NoError(t, err)

	repos, err := c.ListChartRepositories(context.Background(), domain.PersonalScope())
	assert.ErrorIs(t, err, hub.ErrNetworkError)
	assert.Contains(t, err.Error(), "exceeds")
	assert.Nil(t, repos)
}
