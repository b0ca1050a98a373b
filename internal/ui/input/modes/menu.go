package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/ui/input/types"
)

// MenuMode routes keys to the account menu panel
type MenuMode struct{}

func NewMenuMode() *MenuMode {
	return &MenuMode{}
}

func (m *MenuMode) Name() string {
	return "menu"
}

func (m *MenuMode) Enter(ctx types.Context) []types.Action {
	return []types.Action{types.OpenMenuAction{}}
}

func (m *MenuMode) Exit(ctx types.Context) []types.Action {
	return []types.Action{types.CloseMenuAction{}}
}

func (m *MenuMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "up", "k", "shift+tab":
		return []types.Action{types.MenuMoveAction{Delta: -1}}, true
	case "down", "j", "tab":
		return []types.Action{types.MenuMoveAction{Delta: 1}}, true
	case "enter", " ":
		return []types.Action{
			types.MenuActivateAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "esc", "m", "q":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	}
	return nil, true
}
