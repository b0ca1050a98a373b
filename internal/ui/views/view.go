package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"charthub/internal/domain"
	"charthub/internal/logic"
	"charthub/internal/session"
	"charthub/internal/ui/input/types"
)

// EmptyStateCallToAction is the label of the empty-state action
const EmptyStateCallToAction = "Add chart repository"

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Compact        bool
	Scope          domain.Scope
	SessionStatus  session.Status
	UserAlias      string
	ListView       logic.ViewState
	Repositories   []domain.ChartRepository
	TotalLoaded    int
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int
	Spinner        string
	StatusMessage  string
	StatusIsError  bool
	FilterQuery    string
	InputMode      string
	TextInput      string
	DeleteTarget   string
	HelpModel      help.Model
	ShowHelp       bool
	ShowInfo       bool
	InfoContent    string
	Dialog         string
	Menu           MenuState
	PickerOpen     bool
	PickerLabels   []string
	PickerIndex    int
	LoadingScopes  bool
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	repoRender  *RepositoryRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		repoRender:  NewRepositoryRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderHeader(state))
	content.WriteString("\n\n")

	// Prompts replace the first list line while active
	switch {
	case state.DeleteTarget != "":
		content.WriteString(r.styles.Confirm.Render(fmt.Sprintf("Delete chart repository '%s'? (y/n): ", state.DeleteTarget)))
		content.WriteString("\n\n")
	case state.InputMode == "filter":
		content.WriteString(r.styles.Filter.Render("Filter: ") + state.TextInput)
		content.WriteString("\n\n")
	}

	content.WriteString(r.renderMain(state))

	footer := r.renderFooter(state)

	// Push the footer to the bottom
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2 // Main container padding
	if availableLines <= 0 {
		availableLines = 22
	}
	if padding := availableLines - currentLines - lipgloss.Height(footer); padding > 0 {
		content.WriteString(strings.Repeat("\n", padding))
	}
	content.WriteString("\n")
	content.WriteString(footer)

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	finalContent := mainStyle.Render(content.String())

	// Overlay popups on top of main content
	switch {
	case state.Dialog != "":
		return r.popupRender.RenderPopupOverlay(finalContent, state.Dialog, state.Height, state.Width, r.styles.DialogBox)
	case state.Menu.Open:
		return r.popupRender.RenderPopupOverlay(finalContent, r.RenderMenuPanel(state.Menu), state.Height, state.Width, r.styles.MenuBox)
	case state.PickerOpen || state.LoadingScopes:
		return r.popupRender.RenderPopupOverlay(finalContent, r.renderPicker(state), state.Height, state.Width, r.styles.MenuBox)
	case state.ShowInfo && state.InfoContent != "":
		return r.popupRender.RenderPopupOverlay(finalContent, state.InfoContent, state.Height, state.Width, r.styles.InfoBox)
	case state.ShowHelp:
		return r.popupRender.RenderPopupOverlay(finalContent, r.renderHelpContent(state), state.Height, state.Width, r.styles.InfoBox)
	}

	return finalContent
}

// renderHeader renders the title line. Below the compact width only the
// menu hint is shown on the right.
func (r *Renderer) renderHeader(state ViewState) string {
	logo := r.styles.Title.Render("charthub")

	var right []string
	if state.Compact {
		right = append(right, r.styles.Dim.Render("≡ menu (m)"))
	} else {
		right = append(right, r.styles.Scope.Render(scopeLabel(state.Scope)))
		switch state.SessionStatus {
		case session.StatusLoading:
			right = append(right, r.styles.Dim.Render("…"))
		case session.StatusAnonymous:
			right = append(right, r.styles.Dim.Render("Sign in · Sign up (m)"))
		case session.StatusAuthenticated:
			right = append(right, r.styles.User.Render(state.UserAlias))
		}
	}
	if state.FilterQuery != "" {
		right = append([]string{r.styles.Filter.Render(fmt.Sprintf("[Filter: %s]", state.FilterQuery))}, right...)
	}
	rightContent := strings.Join(right, "  ")

	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	availableWidth := termWidth - 4 // Account for main container padding
	paddingWidth := availableWidth - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if paddingWidth < 2 {
		paddingWidth = 2
	}
	return logo + strings.Repeat(" ", paddingWidth) + rightContent
}

func (r *Renderer) renderMain(state ViewState) string {
	if state.SessionStatus == session.StatusAnonymous {
		return r.styles.Dim.Render("Sign in to manage your chart repositories.") + "\n\n" +
			r.styles.Button.Render("Sign in") + r.styles.Dim.Render("  press m to open the menu")
	}

	switch state.ListView {
	case logic.StateEmpty:
		return r.styles.CardTitle.Render("No chart repositories found") + "\n" +
			r.styles.Dim.Render("You can add a new chart repository using the button below.") + "\n\n" +
			r.styles.Button.Render(EmptyStateCallToAction) + r.styles.Dim.Render("  press a")
	case logic.StatePopulated:
		if len(state.Repositories) == 0 {
			return r.styles.Dim.Render(fmt.Sprintf("No chart repositories match the filter (%d hidden).", state.TotalLoaded))
		}
		return r.renderRepositoryList(state)
	default:
		return r.styles.StatusLoading.Render(state.Spinner + " Loading chart repositories...")
	}
}

// renderRepositoryList renders the visible window of cards
func (r *Renderer) renderRepositoryList(state ViewState) string {
	total := len(state.Repositories)
	height := state.ViewportHeight
	if height < 1 {
		height = 1
	}
	end := state.ViewportOffset + height
	if end > total {
		end = total
	}

	var lines []string
	if state.ViewportOffset > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", state.ViewportOffset)))
	}

	for i := state.ViewportOffset; i < end; i++ {
		card := r.repoRender.RenderRepository(state.Repositories[i], i == state.SelectedIndex, state.FilterQuery, state.Width)
		lines = append(lines, card, "")
	}

	if below := total - end; below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", below)))
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) renderFooter(state ViewState) string {
	var b strings.Builder
	if state.StatusMessage != "" {
		style := r.styles.Status
		if state.StatusIsError {
			style = r.styles.StatusError
		}
		b.WriteString(style.Render(state.StatusMessage))
		b.WriteString("\n")
	}

	helpModel := state.HelpModel
	helpModel.Width = state.Width - 4
	b.WriteString(helpModel.View(types.Keys))
	return b.String()
}

func (r *Renderer) renderPicker(state ViewState) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Scope"))
	b.WriteString("\n\n")

	if state.LoadingScopes {
		b.WriteString(r.styles.StatusLoading.Render(state.Spinner + " Loading organizations..."))
		return b.String()
	}

	for i, label := range state.PickerLabels {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == state.PickerIndex {
			b.WriteString(r.styles.SelectionBg.Render("▸ " + label))
		} else {
			b.WriteString("  " + label)
		}
	}
	return b.String()
}

// renderHelpContent renders the help popup from the key bindings
func (r *Renderer) renderHelpContent(state ViewState) string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("charthub Help"))
	b.WriteString("\n")

	for _, column := range types.Keys.FullHelp() {
		b.WriteString("\n")
		for _, binding := range column {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", h.Key)), descStyle.Render(h.Desc)))
		}
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).Render("  Filter examples: url:bitnami, name:stable"))
	return b.String()
}

func scopeLabel(sc domain.Scope) string {
	if sc.IsPersonal() {
		return "personal"
	}
	return "org " + sc.Org
}
