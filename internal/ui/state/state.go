package state

import (
	"charthub/internal/domain"
	"charthub/internal/ui/logic"
)

// AppState contains the UI state that is not owned by the list, session or
// scope stores
type AppState struct {
	// Visible is the loaded list after the filter, in hub order
	Visible []domain.ChartRepository

	// Selection state
	SelectedIndex int

	// UI state
	ViewportOffset int // offset for scrolling, in cards
	ViewportHeight int // number of cards that fit on screen
	ShowHelp       bool
	ShowInfo       bool
	InfoContent    string
	StatusMessage  string // status bar message
	StatusIsError  bool

	// Filter state
	FilterQuery string

	// Scope picker state
	PickerScopes  []domain.Scope
	PickerLabels  []string
	PickerIndex   int
	LoadingScopes bool
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		ViewportHeight: 5, // Default
	}
}

// SetRepositories refreshes the visible list from the loaded one and keeps
// the selection on the same repository when it is still there
func (s *AppState) SetRepositories(all []domain.ChartRepository) {
	selected := s.SelectedName()
	s.Visible = logic.Filter(all, s.FilterQuery)

	if selected != "" {
		for i, repo := range s.Visible {
			if repo.Name == selected {
				s.SelectedIndex = i
				return
			}
		}
	}
	s.clampSelection()
}

// ApplyFilter sets the filter query and refreshes the visible list
func (s *AppState) ApplyFilter(query string, all []domain.ChartRepository) {
	s.FilterQuery = query
	s.SetRepositories(all)
}

// SelectedName returns the name of the selected card
func (s *AppState) SelectedName() string {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Visible) {
		return ""
	}
	return s.Visible[s.SelectedIndex].Name
}

// SetStatus shows an informational status message
func (s *AppState) SetStatus(msg string) {
	s.StatusMessage = msg
	s.StatusIsError = false
}

// SetError shows an error status message
func (s *AppState) SetError(msg string) {
	s.StatusMessage = msg
	s.StatusIsError = true
}

// OpenPicker fills the scope picker, highlighting active
func (s *AppState) OpenPicker(orgs []domain.Organization, active domain.Scope) {
	s.LoadingScopes = false
	s.PickerScopes = []domain.Scope{domain.PersonalScope()}
	s.PickerLabels = []string{"Personal"}
	for _, org := range orgs {
		label := org.Name
		if org.DisplayName != "" && org.DisplayName != org.Name {
			label = org.DisplayName + " (" + org.Name + ")"
		}
		s.PickerScopes = append(s.PickerScopes, domain.OrgScope(org.Name))
		s.PickerLabels = append(s.PickerLabels, label)
	}

	s.PickerIndex = 0
	for i, sc := range s.PickerScopes {
		if sc == active {
			s.PickerIndex = i
			break
		}
	}
}

// MovePicker moves the picker highlight, wrapping around
func (s *AppState) MovePicker(delta int) {
	n := len(s.PickerScopes)
	if n == 0 {
		return
	}
	s.PickerIndex = ((s.PickerIndex+delta)%n + n) % n
}

// PickedScope returns the scope at index
func (s *AppState) PickedScope(index int) (domain.Scope, bool) {
	if index < 0 || index >= len(s.PickerScopes) {
		return domain.Scope{}, false
	}
	return s.PickerScopes[index], true
}

// ClosePicker forgets the picker contents
func (s *AppState) ClosePicker() {
	s.PickerScopes = nil
	s.PickerLabels = nil
	s.PickerIndex = 0
	s.LoadingScopes = false
}

func (s *AppState) clampSelection() {
	if s.SelectedIndex >= len(s.Visible) {
		s.SelectedIndex = len(s.Visible) - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
}
