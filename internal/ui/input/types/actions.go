package types

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown", "home", "end"
}

func (a NavigateAction) Type() string { return "navigate" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

type ClearFilterAction struct{}

func (a ClearFilterAction) Type() string { return "clear_filter" }

// Repository actions
type RefreshAction struct{}

func (a RefreshAction) Type() string { return "refresh" }

type AddRepositoryAction struct{}

func (a AddRepositoryAction) Type() string { return "add_repository" }

type EditRepositoryAction struct {
	Name string
}

func (a EditRepositoryAction) Type() string { return "edit_repository" }

type DeleteRepositoryAction struct {
	Name string
}

func (a DeleteRepositoryAction) Type() string { return "delete_repository" }

type ShowDetailsAction struct {
	Name string
}

func (a ShowDetailsAction) Type() string { return "show_details" }

// Scope picker actions
type OpenPickerAction struct{}

func (a OpenPickerAction) Type() string { return "open_picker" }

type PickerMoveAction struct {
	Delta int
}

func (a PickerMoveAction) Type() string { return "picker_move" }

type PickerSelectAction struct {
	Index int
}

func (a PickerSelectAction) Type() string { return "picker_select" }

type ClosePickerAction struct{}

func (a ClosePickerAction) Type() string { return "close_picker" }

// Menu actions
type OpenMenuAction struct{}

func (a OpenMenuAction) Type() string { return "open_menu" }

type CloseMenuAction struct{}

func (a CloseMenuAction) Type() string { return "close_menu" }

type MenuMoveAction struct {
	Delta int
}

func (a MenuMoveAction) Type() string { return "menu_move" }

type MenuActivateAction struct{}

func (a MenuActivateAction) Type() string { return "menu_activate" }

// Other actions
type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type HelpPagerAction struct{}

func (a HelpPagerAction) Type() string { return "help_pager" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
