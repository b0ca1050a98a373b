package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"charthub/internal/config"
	"charthub/internal/logic"
	"charthub/internal/session"
	"charthub/internal/ui/dialogs"
	"charthub/internal/ui/menu"
	"charthub/internal/ui/state"
	"charthub/internal/ui/views"
)

// Sources are the stores the view is built from
type Sources struct {
	List     *logic.RepositoryList
	Sessions *session.Store
	Menu     *menu.Menu
}

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state            *state.AppState
	config           *config.Config
	sources          Sources
	width            int
	height           int
	help             help.Model
	spinner          string
	deleteTarget     string
	dialog           *dialogs.Form
	inputTransformer *InputTransformer
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, cfg *config.Config, sources Sources, textInput textinput.Model) *ViewModel {
	return &ViewModel{
		state:            appState,
		config:           cfg,
		sources:          sources,
		inputTransformer: NewInputTransformer(textInput),
	}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
}

// SetHelp sets the help model
func (vm *ViewModel) SetHelp(helpModel help.Model) {
	vm.help = helpModel
}

// SetSpinner sets the current spinner frame
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// SetDeleteTarget sets the current delete target
func (vm *ViewModel) SetDeleteTarget(target string) {
	vm.deleteTarget = target
}

// SetDialog sets the open dialog, nil when none is open
func (vm *ViewModel) SetDialog(form *dialogs.Form) {
	vm.dialog = form
}

// SetInputMode sets the current input mode
func (vm *ViewModel) SetInputMode(mode InputMode) {
	vm.inputTransformer.SetMode(mode)
}

// UpdateTextInput updates the text input model
func (vm *ViewModel) UpdateTextInput(textInput textinput.Model) {
	vm.inputTransformer.textInput = textInput
}

// Compact reports whether the terminal is narrower than the compact width
func (vm *ViewModel) Compact() bool {
	return vm.width > 0 && vm.width < vm.config.UI.CompactWidth
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState() views.ViewState {
	current := vm.sources.Sessions.Current()
	list := vm.sources.List

	vs := views.ViewState{
		Width:          vm.width,
		Height:         vm.height,
		Compact:        vm.Compact(),
		Scope:          list.Scope(),
		SessionStatus:  current.Status,
		UserAlias:      current.Alias(),
		ListView:       list.View(),
		Repositories:   vm.state.Visible,
		TotalLoaded:    len(list.Repositories()),
		SelectedIndex:  vm.state.SelectedIndex,
		ViewportOffset: vm.state.ViewportOffset,
		ViewportHeight: vm.state.ViewportHeight,
		Spinner:        vm.spinner,
		StatusMessage:  vm.state.StatusMessage,
		StatusIsError:  vm.state.StatusIsError,
		FilterQuery:    vm.state.FilterQuery,
		InputMode:      vm.inputTransformer.GetInputModeString(),
		TextInput:      vm.inputTransformer.GetInputText(),
		DeleteTarget:   vm.deleteTarget,
		HelpModel:      vm.help,
		ShowHelp:       vm.state.ShowHelp,
		ShowInfo:       vm.state.ShowInfo,
		InfoContent:    vm.state.InfoContent,
		PickerOpen:     vm.inputTransformer.mode == InputModePicker,
		PickerLabels:   vm.state.PickerLabels,
		PickerIndex:    vm.state.PickerIndex,
		LoadingScopes:  vm.state.LoadingScopes,
	}

	if vm.dialog != nil {
		vs.Dialog = vm.dialog.View()
	}

	if m := vm.sources.Menu; m != nil && m.IsOpen() {
		items := m.Items()
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item.String()
		}
		vs.Menu = views.MenuState{
			Open:   true,
			Status: m.Status(),
			Alias:  m.Alias(),
			Items:  labels,
			Cursor: m.Cursor(),
		}
	}

	return vs
}
