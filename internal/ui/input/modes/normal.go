package modes

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/ui/input/types"
)

const doubleKeyTimeout = 500 * time.Millisecond

type NormalMode struct {
	keys        types.KeyMap
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{keys: types.Keys}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.String() == "g" {
		if m.lastKeyWasG && time.Since(m.lastGTime) < doubleKeyTimeout {
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true
	}
	// Any other key cancels the 'g' prefix
	m.lastKeyWasG = false

	name := ctx.CurrentRepositoryName()

	switch {
	case msg.Type == tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case key.Matches(msg, m.keys.Quit):
		return []types.Action{types.QuitAction{Force: false}}, true

	case key.Matches(msg, m.keys.Up):
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case key.Matches(msg, m.keys.Down):
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case key.Matches(msg, m.keys.PageUp):
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case key.Matches(msg, m.keys.PageDown):
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case key.Matches(msg, m.keys.Top):
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case key.Matches(msg, m.keys.Bottom):
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case key.Matches(msg, m.keys.Add):
		return []types.Action{types.AddRepositoryAction{}}, true

	case key.Matches(msg, m.keys.Edit):
		if name == "" {
			return nil, false
		}
		return []types.Action{types.EditRepositoryAction{Name: name}}, true

	case key.Matches(msg, m.keys.Delete):
		if name == "" {
			return nil, false
		}
		return []types.Action{types.ChangeModeAction{Mode: types.ModeDeleteConfirm}}, true

	case key.Matches(msg, m.keys.Details):
		if name == "" {
			return nil, false
		}
		return []types.Action{types.ShowDetailsAction{Name: name}}, true

	case key.Matches(msg, m.keys.Refresh):
		return []types.Action{types.RefreshAction{}}, true

	case key.Matches(msg, m.keys.Scope):
		return []types.Action{types.OpenPickerAction{}}, true

	case key.Matches(msg, m.keys.Filter):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilter}}, true

	case key.Matches(msg, m.keys.Menu):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeMenu}}, true

	case key.Matches(msg, m.keys.Help):
		return []types.Action{types.ToggleHelpAction{}}, true

	case key.Matches(msg, m.keys.HelpPage):
		return []types.Action{types.HelpPagerAction{}}, true

	case msg.Type == tea.KeyEsc:
		if ctx.FilterQuery() != "" {
			return []types.Action{types.ClearFilterAction{}}, true
		}
		return nil, true
	}

	return nil, false
}
