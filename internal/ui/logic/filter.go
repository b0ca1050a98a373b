package logic

import (
	"strings"

	"charthub/internal/domain"
)

// MatchesFilter checks if a repository matches the given filter query.
// "url:" and "name:" restrict the match to one field; otherwise the name,
// display name and url are searched.
func MatchesFilter(repo domain.ChartRepository, filterQuery string) bool {
	query := strings.ToLower(strings.TrimSpace(filterQuery))
	if query == "" {
		return true
	}

	switch {
	case strings.HasPrefix(query, "url:"):
		return strings.Contains(strings.ToLower(repo.URL), strings.TrimPrefix(query, "url:"))
	case strings.HasPrefix(query, "name:"):
		return strings.Contains(strings.ToLower(repo.Name), strings.TrimPrefix(query, "name:"))
	}

	return strings.Contains(strings.ToLower(repo.Name), query) ||
		strings.Contains(strings.ToLower(repo.DisplayName), query) ||
		strings.Contains(strings.ToLower(repo.URL), query)
}

// Filter returns the repositories matching the query, keeping their order
func Filter(repos []domain.ChartRepository, filterQuery string) []domain.ChartRepository {
	if strings.TrimSpace(filterQuery) == "" {
		return repos
	}
	out := make([]domain.ChartRepository, 0, len(repos))
	for _, repo := range repos {
		if MatchesFilter(repo, filterQuery) {
			out = append(out, repo)
		}
	}
	return out
}
