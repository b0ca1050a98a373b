package logic

import (
	"sync"

	"charthub/internal/domain"
)

// MemoryRepositoryStore is an in-memory implementation of RepositoryStore
type MemoryRepositoryStore struct {
	mu    sync.RWMutex
	repos []domain.ChartRepository // nil until loaded
	index map[string]int
}

// NewMemoryRepositoryStore creates a store that is not loaded
func NewMemoryRepositoryStore() *MemoryRepositoryStore {
	return &MemoryRepositoryStore{}
}

// Replace stores repos in the given order. A nil slice stores an empty,
// loaded list.
func (s *MemoryRepositoryStore) Replace(repos []domain.ChartRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repos = make([]domain.ChartRepository, len(repos))
	copy(s.repos, repos)

	// Names are unique per scope on the hub; with duplicates the first wins
	s.index = make(map[string]int, len(repos))
	for i, repo := range s.repos {
		if _, ok := s.index[repo.Name]; !ok {
			s.index[repo.Name] = i
		}
	}
}

// Reset forgets the list so the store is not loaded anymore
func (s *MemoryRepositoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos = nil
	s.index = nil
}

func (s *MemoryRepositoryStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repos != nil
}

// All returns a copy of the repositories, nil when not loaded
func (s *MemoryRepositoryStore) All() []domain.ChartRepository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repos == nil {
		return nil
	}
	result := make([]domain.ChartRepository, len(s.repos))
	copy(result, s.repos)
	return result
}

func (s *MemoryRepositoryStore) Get(name string) (domain.ChartRepository, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return domain.ChartRepository{}, false
	}
	return s.repos[i], true
}

func (s *MemoryRepositoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.repos)
}
