// Package dialogs holds the modal forms: the chart repository form used for
// both create and edit, and the sign-in and sign-up forms.
package dialogs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"charthub/internal/domain"
	"charthub/internal/logic"
)

// Kind identifies what a form is for
type Kind int

const (
	KindCreateRepository Kind = iota
	KindEditRepository
	KindSignIn
	KindSignUp
)

// Field keys
const (
	FieldName        = "name"
	FieldDisplayName = "display_name"
	FieldURL         = "url"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldAlias       = "alias"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
)

// Result of feeding a key to a form
type Result int

const (
	ResultNone Result = iota
	ResultSubmit
	ResultCancel
)

type field struct {
	key      string
	label    string
	required bool
	locked   bool
	input    textinput.Model
}

// Form is a modal form of text fields
type Form struct {
	kind       Kind
	title      string
	fields     []*field
	focus      int
	err        string
	submitting bool
}

// NewRepositoryForm builds the form for the given modal state. In edit mode
// the name is prefilled and locked since it identifies the repository.
func NewRepositoryForm(modal logic.Modal) *Form {
	f := &Form{kind: KindCreateRepository, title: "Add chart repository"}
	f.add(FieldName, "Name", true, "my-charts")
	f.add(FieldDisplayName, "Display name", false, "My charts")
	f.add(FieldURL, "URL", true, "https://charts.example.com")

	if edit, ok := modal.(logic.ModalEdit); ok {
		f.kind = KindEditRepository
		f.title = "Edit chart repository"
		f.setValue(FieldName, edit.Repository.Name)
		f.setValue(FieldDisplayName, edit.Repository.DisplayName)
		f.setValue(FieldURL, edit.Repository.URL)
		f.fields[0].locked = true
		f.focus = 1
	}

	f.focusCurrent()
	return f
}

// NewSignInForm builds the sign-in form
func NewSignInForm() *Form {
	f := &Form{kind: KindSignIn, title: "Sign in"}
	f.add(FieldEmail, "Email", true, "you@example.com")
	f.add(FieldPassword, "Password", true, "")
	f.fields[1].input.EchoMode = textinput.EchoPassword
	f.fields[1].input.EchoCharacter = '•'
	f.focusCurrent()
	return f
}

// NewSignUpForm builds the sign-up form
func NewSignUpForm() *Form {
	f := &Form{kind: KindSignUp, title: "Sign up"}
	f.add(FieldAlias, "Username", true, "")
	f.add(FieldFirstName, "First name", false, "")
	f.add(FieldLastName, "Last name", false, "")
	f.add(FieldEmail, "Email", true, "you@example.com")
	f.add(FieldPassword, "Password", true, "")
	f.fields[4].input.EchoMode = textinput.EchoPassword
	f.fields[4].input.EchoCharacter = '•'
	f.focusCurrent()
	return f
}

func (f *Form) add(key, label string, required bool, placeholder string) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	f.fields = append(f.fields, &field{key: key, label: label, required: required, input: ti})
}

func (f *Form) setValue(key, value string) {
	for _, fl := range f.fields {
		if fl.key == key {
			fl.input.SetValue(value)
		}
	}
}

// Kind returns what the form is for
func (f *Form) Kind() Kind {
	return f.kind
}

// Title returns the form heading
func (f *Form) Title() string {
	return f.title
}

// Value returns the trimmed value of a field
func (f *Form) Value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			if fl.key == FieldPassword {
				return fl.input.Value()
			}
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

// Focused returns the key of the focused field
func (f *Form) Focused() string {
	return f.fields[f.focus].key
}

// SetError shows msg under the fields and ends submission
func (f *Form) SetError(msg string) {
	f.err = msg
	f.submitting = false
}

// Err returns the message shown under the fields
func (f *Form) Err() string {
	return f.err
}

// SetSubmitting marks the form as waiting for the hub
func (f *Form) SetSubmitting(submitting bool) {
	f.submitting = submitting
}

// Submitting reports whether the form waits for the hub
func (f *Form) Submitting() bool {
	return f.submitting
}

// Repository returns the chart repository described by the form
func (f *Form) Repository() domain.ChartRepository {
	return domain.ChartRepository{
		Name:        f.Value(FieldName),
		DisplayName: f.Value(FieldDisplayName),
		URL:         f.Value(FieldURL),
	}
}

// Credentials returns the sign-in email and password
func (f *Form) Credentials() (string, string) {
	return f.Value(FieldEmail), f.Value(FieldPassword)
}

// NewUser returns the account described by the sign-up form
func (f *Form) NewUser() domain.NewUser {
	return domain.NewUser{
		Alias:     f.Value(FieldAlias),
		FirstName: f.Value(FieldFirstName),
		LastName:  f.Value(FieldLastName),
		Email:     f.Value(FieldEmail),
		Password:  f.Value(FieldPassword),
	}
}

// Validate checks required fields and, for repository forms, the URL. The
// first invalid field gets the focus.
func (f *Form) Validate() error {
	for i, fl := range f.fields {
		if fl.required && f.Value(fl.key) == "" {
			f.focusIndex(i)
			return fmt.Errorf("%s is required", strings.ToLower(fl.label))
		}
	}

	if f.kind == KindCreateRepository || f.kind == KindEditRepository {
		if err := validateRepositoryURL(f.Value(FieldURL)); err != nil {
			f.focusIndex(f.indexOf(FieldURL))
			return err
		}
		if strings.ContainsAny(f.Value(FieldName), " /") {
			f.focusIndex(f.indexOf(FieldName))
			return fmt.Errorf("name cannot contain spaces or slashes")
		}
	}
	return nil
}

func validateRepositoryURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) or oci url")
	}
	switch u.Scheme {
	case "http", "https", "oci":
		return nil
	}
	return fmt.Errorf("url must be an absolute http(s) or oci url")
}

// Update feeds a message to the form. Enter moves to the next field and
// submits from the last one; ctrl+s submits from anywhere. A submit that
// fails validation keeps the form open with the error shown.
func (f *Form) Update(msg tea.Msg) (Result, tea.Cmd) {
	if f.submitting {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			return ResultCancel, nil
		}
		return ResultNone, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return ResultCancel, nil
		case "tab", "down":
			return ResultNone, f.move(1)
		case "shift+tab", "up":
			return ResultNone, f.move(-1)
		case "enter":
			if f.focus < f.lastEditable() {
				return ResultNone, f.move(1)
			}
			return f.submit()
		case "ctrl+s":
			return f.submit()
		}
	}

	current := f.fields[f.focus]
	if current.locked {
		return ResultNone, nil
	}
	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		f.err = ""
	}
	return ResultNone, cmd
}

func (f *Form) submit() (Result, tea.Cmd) {
	if err := f.Validate(); err != nil {
		f.err = err.Error()
		return ResultNone, nil
	}
	f.err = ""
	f.submitting = true
	return ResultSubmit, nil
}

func (f *Form) move(delta int) tea.Cmd {
	n := len(f.fields)
	next := f.focus
	for i := 0; i < n; i++ {
		next = ((next+delta)%n + n) % n
		if !f.fields[next].locked {
			break
		}
	}
	return f.focusIndex(next)
}

func (f *Form) focusIndex(i int) tea.Cmd {
	if i < 0 || i >= len(f.fields) {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	return f.focusCurrent()
}

func (f *Form) focusCurrent() tea.Cmd {
	return f.fields[f.focus].input.Focus()
}

func (f *Form) lastEditable() int {
	for i := len(f.fields) - 1; i >= 0; i-- {
		if !f.fields[i].locked {
			return i
		}
	}
	return 0
}

func (f *Form) indexOf(key string) int {
	for i, fl := range f.fields {
		if fl.key == key {
			return i
		}
	}
	return -1
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	lockedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// View renders the form body. The caller frames it.
func (f *Form) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n")

	for i, fl := range f.fields {
		label := fl.label
		if fl.required {
			label += " *"
		}
		switch {
		case fl.locked:
			b.WriteString(lockedStyle.Render(label))
			b.WriteString("\n  ")
			b.WriteString(lockedStyle.Render(fl.input.Value()))
		case i == f.focus:
			b.WriteString(focusStyle.Render("› " + label))
			b.WriteString("\n  ")
			b.WriteString(fl.input.View())
		default:
			b.WriteString(labelStyle.Render("  " + label))
			b.WriteString("\n  ")
			b.WriteString(fl.input.View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(hintStyle.Render("Please wait..."))
	case f.err != "":
		b.WriteString(errorStyle.Render(f.err))
	default:
		b.WriteString(hintStyle.Render("tab next • enter submit • esc cancel"))
	}
	return b.String()
}
