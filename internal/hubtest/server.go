// Package hubtest provides an in-memory hub serving the subset of the
// Artifact Hub API charthub uses. It backs the client, CLI, UI and e2e tests.
package hubtest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"charthub/internal/domain"
)

const sessionCookieName = "sid"

type userKey struct{}

type user struct {
	alias    string
	email    string
	hash     []byte
	verified bool
}

type failure struct {
	status int
	count  int
}

// Server is a fake hub
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]*user    // email -> user
	sessions  map[string]string   // session id -> email
	members   map[string][]string // org -> member emails
	orgNames  map[string]string   // org -> display name
	orgOrder  []string
	repos     map[string][]domain.ChartRepository // owner key -> repositories
	failures  []failure
	listCalls int
}

// NewServer starts a fake hub. Close it when done.
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		members:  make(map[string][]string),
		orgNames: make(map[string]string),
		repos:    make(map[string][]domain.ChartRepository),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.injectFailures)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/user", s.registerUser)
		r.Post("/user/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireLogin)

			r.Get("/user/logout", s.logout)
			r.Get("/user/alias", s.getAlias)
			r.Get("/user/orgs", s.getOrganizations)

			r.Route("/user/chart-repositories", func(r chi.Router) {
				r.Use(s.withOwner(func(r *http.Request) (string, int) {
					return userOwner(currentUser(r)), 0
				}))
				s.chartRepositoryRoutes(r)
			})

			r.Route("/org/{orgName}/chart-repositories", func(r chi.Router) {
				r.Use(s.withOwner(s.orgOwner))
				s.chartRepositoryRoutes(r)
			})
		})
	})

	return r
}

func (s *Server) chartRepositoryRoutes(r chi.Router) {
	r.Get("/", s.listChartRepositories)
	r.Post("/", s.addChartRepository)
	r.Put("/{repoName}", s.updateChartRepository)
	r.Delete("/{repoName}", s.deleteChartRepository)
}

// AddUser registers a verified user
func (s *Server) AddUser(alias, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{alias: alias, email: email, hash: hash, verified: true}
}

// AddOrganization creates an organization with the given members
func (s *Server) AddOrganization(name, displayName string, memberEmails ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgNames[name]; !ok {
		s.orgOrder = append(s.orgOrder, name)
	}
	s.orgNames[name] = displayName
	s.members[name] = append(s.members[name], memberEmails...)
}

// SetUserRepositories replaces the personal repositories of a user
func (s *Server) SetUserRepositories(email string, repos ...domain.ChartRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos["user:"+email] = withIDs(repos)
}

// SetOrgRepositories replaces the repositories of an organization
func (s *Server) SetOrgRepositories(org string, repos ...domain.ChartRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos["org:"+org] = withIDs(repos)
}

// UserRepositories returns a copy of a user's personal repositories
func (s *Server) UserRepositories(email string) []domain.ChartRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChartRepository{}, s.repos["user:"+email]...)
}

// OrgRepositories returns a copy of an organization's repositories
func (s *Server) OrgRepositories(org string) []domain.ChartRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChartRepository{}, s.repos["org:"+org]...)
}

// NewSession signs a user in without going through the login endpoint and
// returns the session cookie value.
func (s *Server) NewSession(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.sessions[sid] = email
	return sid
}

// ExpireSessions drops every open session
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

// FailNext makes the next count requests answer with status
func (s *Server) FailNext(status, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, count: count})
}

// ListCalls returns how many chart repository list requests were served
func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := 0
		if len(s.failures) > 0 {
			status = s.failures[0].status
			s.failures[0].count--
			if s.failures[0].count <= 0 {
				s.failures = s.failures[1:]
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, r, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		email, ok := s.sessions[cookie.Value]
		u := s.users[email]
		s.mu.Unlock()
		if !ok || u == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ownerKey struct{}

// withOwner resolves the owner key of the repositories a route acts on.
// The resolver returns a non-zero status to reject the request.
func (s *Server) withOwner(resolve func(r *http.Request) (string, int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, status := resolve(r)
			if status != 0 {
				writeError(w, r, status, http.StatusText(status))
				return
			}
			ctx := context.WithValue(r.Context(), ownerKey{}, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) orgOwner(r *http.Request) (string, int) {
	org := chi.URLParam(r, "orgName")
	u := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgNames[org]; !ok {
		return "", http.StatusNotFound
	}
	for _, email := range s.members[org] {
		if email == u.email {
			return "org:" + org, 0
		}
	}
	return "", http.StatusForbidden
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var input domain.NewUser
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid user")
		return
	}
	if input.Alias == "" || input.Email == "" || input.Password == "" {
		writeError(w, r, http.StatusBadRequest, "alias, email and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.alias == input.Alias || u.email == input.Email {
			writeError(w, r, http.StatusBadRequest, "alias or email already in use")
			return
		}
	}
	s.users[input.Email] = &user{alias: input.Alias, email: input.Email, hash: hash}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "credentials not provided")
		return
	}

	s.mu.Lock()
	u := s.users[email]
	s.mu.Unlock()
	if u == nil || !u.verified || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	sid := s.NewSession(email)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAlias(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, domain.User{Alias: currentUser(r).alias})
}

func (s *Server) getOrganizations(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.Lock()
	orgs := []domain.Organization{}
	for _, name := range s.orgOrder {
		for _, email := range s.members[name] {
			if email == u.email {
				orgs = append(orgs, domain.Organization{Name: name, DisplayName: s.orgNames[name]})
				break
			}
		}
	}
	s.mu.Unlock()

	render.JSON(w, r, orgs)
}

func (s *Server) listChartRepositories(w http.ResponseWriter, r *http.Request) {
	owner := r.Context().Value(ownerKey{}).(string)

	s.mu.Lock()
	s.listCalls++
	repos := append([]domain.ChartRepository{}, s.repos[owner]...)
	s.mu.Unlock()

	render.JSON(w, r, repos)
}

func (s *Server) addChartRepository(w http.ResponseWriter, r *http.Request) {
	owner := r.Context().Value(ownerKey{}).(string)

	repo, err := decodeRepository(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.repos[owner] {
		if existing.Name == repo.Name {
			writeError(w, r, http.StatusConflict, "chart repository already exists")
			return
		}
	}
	repo.ID = uuid.NewString()
	s.repos[owner] = append(s.repos[owner], repo)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) updateChartRepository(w http.ResponseWriter, r *http.Request) {
	owner := r.Context().Value(ownerKey{}).(string)
	name := chi.URLParam(r, "repoName")

	repo, err := decodeRepository(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	repos := s.repos[owner]
	for i := range repos {
		if repos[i].Name == name {
			repos[i].DisplayName = repo.DisplayName
			repos[i].URL = repo.URL
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "chart repository not found")
}

func (s *Server) deleteChartRepository(w http.ResponseWriter, r *http.Request) {
	owner := r.Context().Value(ownerKey{}).(string)
	name := chi.URLParam(r, "repoName")

	s.mu.Lock()
	defer s.mu.Unlock()
	repos := s.repos[owner]
	for i := range repos {
		if repos[i].Name == name {
			s.repos[owner] = append(repos[:i:i], repos[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "chart repository not found")
}

func decodeRepository(r *http.Request) (domain.ChartRepository, error) {
	var repo domain.ChartRepository
	if err := render.DecodeJSON(r.Body, &repo); err != nil {
		return repo, errors.New("invalid chart repository")
	}
	repo.Name = strings.TrimSpace(repo.Name)
	if repo.Name == "" || repo.URL == "" {
		return repo, errors.New("name and url are required")
	}
	return repo, nil
}

func currentUser(r *http.Request) *user {
	return r.Context().Value(userKey{}).(*user)
}

func userOwner(u *user) string {
	return "user:" + u.email
}

func withIDs(repos []domain.ChartRepository) []domain.ChartRepository {
	out := make([]domain.ChartRepository, len(repos))
	for i, repo := range repos {
		if repo.ID == "" {
			repo.ID = uuid.NewString()
		}
		out[i] = repo
	}
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"message": message})
}
