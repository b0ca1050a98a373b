package views

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"charthub/internal/domain"
	"charthub/internal/logic"
	"charthub/internal/session"
)

func baseState() ViewState {
	return ViewState{
		Width:          100,
		Height:         30,
		Scope:          domain.OrgScope("acme"),
		SessionStatus:  session.StatusAuthenticated,
		UserAlias:      "alice",
		ViewportHeight: 5,
		HelpModel:      help.New(),
	}
}

func TestRenderStates(t *testing.T) {
	r := NewRenderer()

	t.Run("loading never renders as empty", func(t *testing.T) {
		s := baseState()
		s.ListView = logic.StateLoading
		out := r.Render(s)
		assert.Contains(t, out, "Loading chart repositories...")
		assert.NotContains(t, out, EmptyStateCallToAction)
	})

	t.Run("empty shows the call to action", func(t *testing.T) {
		s := baseState()
		s.ListView = logic.StateEmpty
		out := r.Render(s)
		assert.Contains(t, out, "No chart repositories found")
		assert.Equal(t, 1, strings.Count(out, EmptyStateCallToAction))
	})

	t.Run("populated renders one card per repository in order", func(t *testing.T) {
		s := baseState()
		s.ListView = logic.StatePopulated
		s.Repositories = []domain.ChartRepository{
			{Name: "stable", DisplayName: "Stable charts", URL: "https://charts.example.com/stable"},
			{Name: "bitnami", URL: "https://charts.bitnami.com/bitnami"},
		}
		s.TotalLoaded = 2
		out := r.Render(s)
		assert.Contains(t, out, "Stable charts (stable)")
		assert.Contains(t, out, "https://charts.bitnami.com/bitnami")
		assert.Less(t, strings.Index(out, "stable"), strings.Index(out, "bitnami"))
	})

	t.Run("filter hiding everything", func(t *testing.T) {
		s := baseState()
		s.ListView = logic.StatePopulated
		s.TotalLoaded = 3
		s.FilterQuery = "zzz"
		out := r.Render(s)
		assert.Contains(t, out, "(3 hidden)")
		assert.Contains(t, out, "[Filter: zzz]")
	})

	t.Run("anonymous asks to sign in", func(t *testing.T) {
		s := baseState()
		s.SessionStatus = session.StatusAnonymous
		s.UserAlias = ""
		out := r.Render(s)
		assert.Contains(t, out, "Sign in to manage your chart repositories.")
		assert.Contains(t, out, "Sign in · Sign up (m)")
	})
}

func TestHeaderCompact(t *testing.T) {
	r := NewRenderer()

	s := baseState()
	s.ListView = logic.StateEmpty
	assert.Contains(t, r.Render(s), "alice")

	s.Compact = true
	s.Width = 60
	out := r.Render(s)
	assert.Contains(t, out, "≡ menu (m)")
	assert.NotContains(t, out, "alice")
}

func TestScrollIndicators(t *testing.T) {
	r := NewRenderer()
	s := baseState()
	s.ListView = logic.StatePopulated
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		s.Repositories = append(s.Repositories, domain.ChartRepository{Name: name, URL: "https://" + name})
	}
	s.ViewportHeight = 2
	s.ViewportOffset = 1
	s.SelectedIndex = 1

	out := r.Render(s)
	assert.Contains(t, out, "↑ 1 more above ↑")
	assert.Contains(t, out, "↓ 2 more below ↓")
	assert.Contains(t, out, "▸ b")
}

func TestRenderMenuPanel(t *testing.T) {
	r := NewRenderer()

	loading := r.RenderMenuPanel(MenuState{Open: true, Status: session.StatusLoading})
	assert.Contains(t, loading, "…")
	assert.NotContains(t, loading, "Sign")

	anon := r.RenderMenuPanel(MenuState{Open: true, Status: session.StatusAnonymous, Items: []string{"Sign in", "Sign up"}, Cursor: 1})
	assert.Contains(t, anon, "  Sign in")
	assert.Contains(t, anon, "▸ Sign up")

	authed := r.RenderMenuPanel(MenuState{Open: true, Status: session.StatusAuthenticated, Alias: "alice", Items: []string{"Sign out"}})
	assert.Contains(t, authed, "Signed in as alice")
	assert.Contains(t, authed, "▸ Sign out")
}

func TestRenderRepositoryTruncatesURL(t *testing.T) {
	rr := NewRepositoryRenderer(NewStyles())
	repo := domain.ChartRepository{Name: "long", URL: "https://charts.example.com/" + strings.Repeat("x", 80)}

	card := rr.RenderRepository(repo, false, "", 40)
	lines := strings.Split(card, "\n")
	assert.Len(t, lines, 2)
	assert.LessOrEqual(t, lipgloss.Width(lines[1]), 40)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "…"))
}

func TestPopupOverlayKeepsSurroundings(t *testing.T) {
	pr := NewPopupRenderer(NewStyles())
	base := strings.Join([]string{
		"0123456789",
		"abcdefghij",
		"ABCDEFGHIJ",
	}, "\n")

	out := pr.RenderPopupOverlay(base, "XY", 3, 10, lipgloss.NewStyle())
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "0123456789", ansiRE.ReplaceAllString(lines[0], ""))
	assert.Equal(t, "abcdXYghij", ansiRE.ReplaceAllString(lines[1], ""))
}

func TestCutLeft(t *testing.T) {
	assert.Equal(t, "cdef", cutLeft("abcdef", 2))
	assert.Equal(t, "", cutLeft("ab", 5))
	// wide runes count two cells
	assert.Equal(t, "c", cutLeft("日bc", 3))
}
