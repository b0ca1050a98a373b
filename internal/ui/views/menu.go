package views

import (
	"strings"

	"charthub/internal/session"
)

// MenuState is what the account menu panel shows
type MenuState struct {
	Open   bool
	Status session.Status
	Alias  string
	Items  []string
	Cursor int
}

// RenderMenuPanel renders the account menu panel. While the session is
// resolving the panel shows a neutral placeholder and no entries.
func (r *Renderer) RenderMenuPanel(menu MenuState) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Account"))
	b.WriteString("\n\n")

	switch menu.Status {
	case session.StatusLoading:
		b.WriteString(r.styles.Dim.Render("…"))
		return b.String()
	case session.StatusAuthenticated:
		b.WriteString("Signed in as ")
		b.WriteString(r.styles.User.Render(menu.Alias))
		b.WriteString("\n\n")
	}

	for i, item := range menu.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == menu.Cursor {
			b.WriteString(r.styles.SelectionBg.Render("▸ " + item))
		} else {
			b.WriteString("  " + item)
		}
	}
	return b.String()
}
