package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay renders a popup centered on top of the main content.
// The main content is greyed out, except for lines naming the popup's
// subject.
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int, popupStyle lipgloss.Style) string {
	styledPopup := popupStyle.Render(popupContent)

	modalW := lipgloss.Width(styledPopup)
	modalH := lipgloss.Height(styledPopup)
	x := (width - modalW) / 2
	y := (height - modalH) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	targetName := extractTitlePlain(popupContent)
	base := strings.Split(desaturateKeeping(mainContent, targetName), "\n")
	for len(base) < y+modalH {
		base = append(base, "")
	}

	gray := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for i, popupLine := range strings.Split(styledPopup, "\n") {
		row := y + i
		plain := ansiRE.ReplaceAllString(base[row], "")
		left := runewidth.FillRight(runewidth.Truncate(plain, x, ""), x)
		right := cutLeft(plain, x+modalW)
		base[row] = gray.Render(left) + popupLine + gray.Render(right)
	}

	return strings.Join(base, "\n")
}

// cutLeft drops the first n cells of s
func cutLeft(s string, n int) string {
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += runewidth.RuneWidth(r)
	}
	return ""
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// desaturateANSI strips ANSI color/style codes and recolors text dim gray
func desaturateANSI(s string) string {
	plain := ansiRE.ReplaceAllString(s, "")
	return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(plain)
}

// extractTitlePlain returns the first line of popup content without ANSI
func extractTitlePlain(popup string) string {
	if i := strings.IndexByte(popup, '\n'); i >= 0 {
		popup = popup[:i]
	}
	return strings.TrimSpace(ansiRE.ReplaceAllString(popup, ""))
}

// desaturateKeeping turns everything greyscale except lines containing keepSubstr (plain text match)
func desaturateKeeping(s, keepSubstr string) string {
	if keepSubstr == "" {
		return desaturateANSI(s)
	}
	lines := strings.Split(s, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		plain := ansiRE.ReplaceAllString(line, "")
		if strings.Contains(plain, keepSubstr) {
			out[i] = line
		} else {
			out[i] = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(plain)
		}
	}
	return strings.Join(out, "\n")
}
