package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"charthub/internal/domain"
)

// CardHeight is the number of lines one card takes, gap included
const CardHeight = 3

// RepositoryRenderer renders one chart repository as a card
type RepositoryRenderer struct {
	styles *Styles
}

// NewRepositoryRenderer creates a new repository renderer
func NewRepositoryRenderer(styles *Styles) *RepositoryRenderer {
	return &RepositoryRenderer{
		styles: styles,
	}
}

// RenderRepository renders a card: the title with the name when it differs,
// then the URL. Matches of filterQuery in the title are highlighted.
func (r *RepositoryRenderer) RenderRepository(repo domain.ChartRepository, isSelected bool, filterQuery string, width int) string {
	bg := lipgloss.NewStyle()
	marker := "  "
	if isSelected {
		bg = r.styles.SelectionBg
		marker = "▸ "
	}

	titleStyle := r.styles.CardTitle.Inherit(bg)
	title := titleStyle.Render(repo.Title())
	if filterQuery != "" {
		title = r.highlightMatch(repo.Title(), filterQuery, r.styles.Highlight.Inherit(bg), titleStyle)
	}

	first := bg.Render(marker) + title
	if repo.DisplayName != "" && repo.DisplayName != repo.Name {
		first += bg.Render(" ") + r.styles.CardName.Inherit(bg).Render("("+repo.Name+")")
	}

	url := repo.URL
	if width > 0 {
		// Leave room for the container padding and the marker
		url = runewidth.Truncate(url, width-8, "…")
	}
	second := bg.Render("  ") + r.styles.CardURL.Inherit(bg).Render(url)

	return first + "\n" + second
}

// highlightMatch highlights the first case-insensitive match of query in text
func (r *RepositoryRenderer) highlightMatch(text, query string, highlight, normal lipgloss.Style) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx < 0 {
		return normal.Render(text)
	}
	end := idx + len(query)
	return normal.Render(text[:idx]) + highlight.Render(text[idx:end]) + normal.Render(text[end:])
}
