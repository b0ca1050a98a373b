package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/ui/input/types"
)

// PickerMode selects the active scope from the loaded list
type PickerMode struct{}

func NewPickerMode() *PickerMode {
	return &PickerMode{}
}

func (m *PickerMode) Name() string {
	return "scope"
}

func (m *PickerMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *PickerMode) Exit(ctx types.Context) []types.Action {
	return []types.Action{types.ClosePickerAction{}}
}

func (m *PickerMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "up", "k":
		return []types.Action{types.PickerMoveAction{Delta: -1}}, true
	case "down", "j":
		return []types.Action{types.PickerMoveAction{Delta: 1}}, true
	case "enter":
		if ctx.PickerSize() == 0 {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
		}
		return []types.Action{
			types.PickerSelectAction{Index: ctx.PickerIndex()},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "esc", "q", "o":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	}
	return nil, true
}
