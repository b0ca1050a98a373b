package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"charthub/internal/ui/input/types"
)

type ConfirmMode struct {
	repositoryName string
}

func NewConfirmMode() *ConfirmMode {
	return &ConfirmMode{}
}

func (m *ConfirmMode) Name() string {
	return "delete-confirm"
}

func (m *ConfirmMode) Enter(ctx types.Context) []types.Action {
	// Pin the target so a background reload cannot change it
	m.repositoryName = ctx.CurrentRepositoryName()
	return nil
}

func (m *ConfirmMode) Exit(ctx types.Context) []types.Action {
	m.repositoryName = ""
	return nil
}

// Target returns the repository awaiting confirmation
func (m *ConfirmMode) Target() string {
	return m.repositoryName
}

func (m *ConfirmMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "y", "Y":
		return []types.Action{
			types.DeleteRepositoryAction{Name: m.repositoryName},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "n", "N", "esc":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	}

	// Swallow everything else while the prompt is up
	return nil, true
}
