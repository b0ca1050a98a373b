// Package menu is the collapsible session menu. It holds no session state of
// its own: every decision is taken from the session store at the time it is
// asked, and all mutations go through the callbacks.
package menu

import (
	"charthub/internal/session"
)

// Item is an entry of the menu
type Item int

const (
	ItemSignIn Item = iota
	ItemSignUp
	ItemSignOut
)

func (i Item) String() string {
	switch i {
	case ItemSignIn:
		return "Sign in"
	case ItemSignUp:
		return "Sign up"
	case ItemSignOut:
		return "Sign out"
	}
	return ""
}

// SessionSource gives read-only access to the current session
type SessionSource interface {
	Current() session.Session
}

// Callbacks are invoked after the menu closed itself
type Callbacks struct {
	OnSignIn  func()
	OnSignUp  func()
	OnSignOut func()
}

// Menu is the session menu panel
type Menu struct {
	sessions  SessionSource
	callbacks Callbacks
	open      bool
	cursor    int
}

// New creates a closed menu
func New(sessions SessionSource, callbacks Callbacks) *Menu {
	return &Menu{sessions: sessions, callbacks: callbacks}
}

// Open shows the panel with the cursor on the first entry
func (m *Menu) Open() {
	m.open = true
	m.cursor = 0
}

// Close hides the panel
func (m *Menu) Close() {
	m.open = false
}

// Toggle opens a closed panel and closes an open one
func (m *Menu) Toggle() {
	if m.open {
		m.Close()
		return
	}
	m.Open()
}

// IsOpen reports whether the panel is shown
func (m *Menu) IsOpen() bool {
	return m.open
}

// Status is the session status the panel renders for
func (m *Menu) Status() session.Status {
	return m.sessions.Current().Status
}

// Alias is the identity summary shown to a signed-in user
func (m *Menu) Alias() string {
	return m.sessions.Current().Alias()
}

// Items returns the interactive entries. A loading session has none.
func (m *Menu) Items() []Item {
	switch m.Status() {
	case session.StatusAnonymous:
		return []Item{ItemSignIn, ItemSignUp}
	case session.StatusAuthenticated:
		return []Item{ItemSignOut}
	}
	return nil
}

// Cursor returns the highlighted entry index
func (m *Menu) Cursor() int {
	items := m.Items()
	if len(items) == 0 {
		return 0
	}
	if m.cursor >= len(items) {
		return len(items) - 1
	}
	return m.cursor
}

// Move moves the cursor by delta, wrapping around
func (m *Menu) Move(delta int) {
	n := len(m.Items())
	if n == 0 {
		return
	}
	m.cursor = ((m.Cursor()+delta)%n + n) % n
}

// Activate runs the highlighted entry. It reports false when the panel is
// closed or has nothing to activate.
func (m *Menu) Activate() bool {
	items := m.Items()
	if !m.open || len(items) == 0 {
		return false
	}
	return m.ActivateItem(items[m.Cursor()])
}

// ActivateItem runs item if the current session offers it. The panel is
// closed before the callback fires.
func (m *Menu) ActivateItem(item Item) bool {
	offered := false
	for _, it := range m.Items() {
		if it == item {
			offered = true
			break
		}
	}
	if !offered {
		return false
	}

	m.Close()

	var callback func()
	switch item {
	case ItemSignIn:
		callback = m.callbacks.OnSignIn
	case ItemSignUp:
		callback = m.callbacks.OnSignUp
	case ItemSignOut:
		callback = m.callbacks.OnSignOut
	}
	if callback != nil {
		callback()
	}
	return true
}
