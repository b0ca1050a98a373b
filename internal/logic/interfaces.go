package logic

import (
	"context"

	"charthub/internal/domain"
)

// Fetcher loads the chart repositories of a scope
type Fetcher interface {
	ListChartRepositories(ctx context.Context, scope domain.Scope) ([]domain.ChartRepository, error)
}

// RepositoryStore holds the loaded chart repositories in hub order.
// A store that was never filled, or was reset, is not loaded; this is
// distinct from a loaded store with no repositories.
type RepositoryStore interface {
	Replace(repos []domain.ChartRepository)
	Reset()
	Loaded() bool
	All() []domain.ChartRepository
	Get(name string) (domain.ChartRepository, bool)
	Len() int
}

// ViewState is what the repository list renders
type ViewState int

const (
	StateLoading ViewState = iota
	StateEmpty
	StatePopulated
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	}
	return "unknown"
}
