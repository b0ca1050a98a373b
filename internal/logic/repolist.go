package logic

import (
	"context"

	"github.com/rs/zerolog/log"

	"charthub/internal/domain"
	"charthub/internal/eventbus"
	"charthub/internal/hub"
	"charthub/internal/scope"
)

// Request identifies one list load. Gen increases with every load so a
// result can be matched against the latest request.
type Request struct {
	Gen   uint64
	Scope domain.Scope
}

// Result is the outcome of fetching a Request
type Result struct {
	Request
	Repositories []domain.ChartRepository
	Err          error
}

// RepositoryListOption configures a RepositoryList
type RepositoryListOption func(*RepositoryList)

// WithAuthErrorHandler sets the callback invoked when a load is rejected
// because the session is gone.
func WithAuthErrorHandler(fn func()) RepositoryListOption {
	return func(l *RepositoryList) {
		l.onAuthError = fn
	}
}

// WithBus publishes RepositoriesLoadedEvent on every applied load
func WithBus(bus eventbus.EventBus) RepositoryListOption {
	return func(l *RepositoryList) {
		l.bus = bus
	}
}

// WithStore replaces the default in-memory store
func WithStore(store RepositoryStore) RepositoryListOption {
	return func(l *RepositoryList) {
		l.store = store
	}
}

// RepositoryList owns the list loading lifecycle of one scope and the
// state of the repository form.
//
// Its state is meant to be driven from a single goroutine. Only Fetch may
// run elsewhere: loads are split into Begin, Fetch and Finish so the caller
// can fetch asynchronously and apply the result back on its own goroutine.
type RepositoryList struct {
	fetcher     Fetcher
	store       RepositoryStore
	scope       domain.Scope
	gen         uint64
	loading     bool
	lastErr     error
	modal       Modal
	onAuthError func()
	dispatch    func(Request)
	bus         eventbus.EventBus
}

// NewRepositoryList creates a list for the given scope. Nothing is loaded
// until Load, Reload or a scope change.
func NewRepositoryList(fetcher Fetcher, initial domain.Scope, options ...RepositoryListOption) *RepositoryList {
	l := &RepositoryList{
		fetcher: fetcher,
		store:   NewMemoryRepositoryStore(),
		scope:   initial,
		modal:   ModalClosed{},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// SetDispatcher makes reloads asynchronous: instead of fetching inline,
// the request is handed to dispatch, which must eventually feed
// Fetch's Result into Finish.
func (l *RepositoryList) SetDispatcher(dispatch func(Request)) {
	l.dispatch = dispatch
}

// SetAuthErrorHandler replaces the auth error callback
func (l *RepositoryList) SetAuthErrorHandler(fn func()) {
	l.onAuthError = fn
}

// Begin starts a load of scope and returns its request. Any request begun
// earlier becomes stale.
func (l *RepositoryList) Begin(sc domain.Scope) Request {
	l.gen++
	l.scope = sc
	l.loading = true
	return Request{Gen: l.gen, Scope: sc}
}

// Fetch performs the request. It does not touch the list state and is safe
// to call from another goroutine.
func (l *RepositoryList) Fetch(ctx context.Context, req Request) Result {
	repos, err := l.fetcher.ListChartRepositories(ctx, req.Scope)
	return Result{Request: req, Repositories: repos, Err: err}
}

// Finish applies a result. Results of stale requests are dropped and
// Finish returns false.
//
// On success the list is replaced, keeping the hub's order. A rejected
// session invokes the auth error callback once and leaves the list as it
// was. Any other error collapses the list to empty and is kept in LastErr.
func (l *RepositoryList) Finish(res Result) bool {
	if res.Gen != l.gen {
		log.Debug().
			Uint64("gen", res.Gen).
			Uint64("latest", l.gen).
			Str("scope", res.Scope.String()).
			Msg("Discarding stale repository list")
		return false
	}

	l.loading = false

	switch {
	case res.Err == nil:
		l.lastErr = nil
		l.store.Replace(res.Repositories)
		if l.bus != nil {
			l.bus.Publish(eventbus.RepositoriesLoadedEvent{Scope: res.Scope, Count: len(res.Repositories)})
		}

	case hub.IsLoginRedirect(res.Err):
		log.Info().Str("scope", res.Scope.String()).Msg("Repository list requires sign in")
		if l.onAuthError != nil {
			l.onAuthError()
		}

	default:
		log.Error().Err(res.Err).Str("scope", res.Scope.String()).Msg("Failed to load chart repositories")
		l.lastErr = res.Err
		l.store.Replace([]domain.ChartRepository{})
	}

	return true
}

// Load fetches the list of scope and applies it before returning. The
// returned error is the fetch error, already handled as Finish describes.
func (l *RepositoryList) Load(ctx context.Context, sc domain.Scope) error {
	res := l.Fetch(ctx, l.Begin(sc))
	l.Finish(res)
	return res.Err
}

// Reload loads the current scope again
func (l *RepositoryList) Reload() {
	l.request(l.scope)
}

// ScopeChanged drops the loaded list and loads sc
func (l *RepositoryList) ScopeChanged(sc domain.Scope) {
	l.store.Reset()
	l.lastErr = nil
	l.request(sc)
}

// Watch reloads the list whenever the selector's scope changes and
// returns a function that stops watching.
func (l *RepositoryList) Watch(selector *scope.Selector) func() {
	return selector.Subscribe(l.ScopeChanged)
}

func (l *RepositoryList) request(sc domain.Scope) {
	req := l.Begin(sc)
	if l.dispatch != nil {
		l.dispatch(req)
		return
	}
	l.Finish(l.Fetch(context.Background(), req))
}

// OpenCreateModal opens the form for a new repository
func (l *RepositoryList) OpenCreateModal() {
	l.modal = ModalCreate{}
}

// OpenEditModal opens the form for repo
func (l *RepositoryList) OpenEditModal(repo domain.ChartRepository) {
	l.modal = ModalEdit{Repository: repo}
}

// CloseModal closes the form. It never reloads by itself.
func (l *RepositoryList) CloseModal() {
	l.modal = ModalClosed{}
}

// Succeeded is reported by the form or a card after a successful
// mutation. It reloads the current scope whatever the form's mode was.
func (l *RepositoryList) Succeeded() {
	l.Reload()
}

// Modal returns the form state
func (l *RepositoryList) Modal() Modal {
	return l.modal
}

// View returns what should be rendered. A list that is not loaded renders
// as loading, never as empty.
func (l *RepositoryList) View() ViewState {
	switch {
	case l.loading || !l.store.Loaded():
		return StateLoading
	case l.store.Len() == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

// Repositories returns the loaded list, nil when not loaded
func (l *RepositoryList) Repositories() []domain.ChartRepository {
	return l.store.All()
}

// Get returns the loaded repository named name
func (l *RepositoryList) Get(name string) (domain.ChartRepository, bool) {
	return l.store.Get(name)
}

// Scope returns the scope of the latest load
func (l *RepositoryList) Scope() domain.Scope {
	return l.scope
}

// Loading reports whether a load is outstanding
func (l *RepositoryList) Loading() bool {
	return l.loading
}

// Loaded reports whether a list has been applied since the last scope change
func (l *RepositoryList) Loaded() bool {
	return l.store.Loaded()
}

// LastErr returns the error of the latest load when it failed for a reason
// other than a rejected session.
func (l *RepositoryList) LastErr() error {
	return l.lastErr
}

// Clear drops the loaded list and invalidates any outstanding request
// without starting a new one. Used when the session ends.
func (l *RepositoryList) Clear() {
	l.gen++
	l.loading = false
	l.lastErr = nil
	l.store.Reset()
}
