package domain

// ChartRepository represents a chart repository registered on the hub.
// Name is unique within a scope and is used as the stable key; the other
// fields are passed through untouched.
type ChartRepository struct {
	ID          string `json:"chart_repository_id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	URL         string `json:"url" yaml:"url"`
}

// Title returns the display name, falling back to the name
func (r ChartRepository) Title() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

// Scope is the namespace chart repositories are listed under.
// An empty Org means the signed-in user's personal scope.
type Scope struct {
	Org string
}

// PersonalScope returns the scope of the current user
func PersonalScope() Scope {
	return Scope{}
}

// OrgScope returns the scope of the given organization
func OrgScope(name string) Scope {
	return Scope{Org: name}
}

// IsPersonal reports whether the scope is the current user's own
func (s Scope) IsPersonal() bool {
	return s.Org == ""
}

func (s Scope) String() string {
	if s.IsPersonal() {
		return "personal"
	}
	return "org:" + s.Org
}

// User is the signed-in hub user
type User struct {
	Alias string `json:"alias"`
}

// NewUser holds the data needed to sign up
type NewUser struct {
	Alias     string `json:"alias"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Organization is an organization the user belongs to
type Organization struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}
