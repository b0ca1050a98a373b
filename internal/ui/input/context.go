package input

import "charthub/internal/ui/state"

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State *state.AppState
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.State.SelectedIndex
}

// TotalItems returns the number of visible cards
func (c *ModelContext) TotalItems() int {
	return len(c.State.Visible)
}

// CurrentRepositoryName returns the name of the selected card, or "" when
// nothing is selectable
func (c *ModelContext) CurrentRepositoryName() string {
	idx := c.CurrentIndex()
	if idx < 0 || idx >= len(c.State.Visible) {
		return ""
	}
	return c.State.Visible[idx].Name
}

// FilterQuery returns the active filter
func (c *ModelContext) FilterQuery() string {
	return c.State.FilterQuery
}

// PickerIndex returns the highlighted scope in the picker
func (c *ModelContext) PickerIndex() int {
	return c.State.PickerIndex
}

// PickerSize returns the number of scopes in the picker
func (c *ModelContext) PickerSize() int {
	return len(c.State.PickerScopes)
}
