package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"charthub/internal/domain"
)

func TestMatchesFilter(t *testing.T) {
	repo := domain.ChartRepository{
		Name:        "bitnami",
		DisplayName: "Bitnami Charts",
		URL:         "https://charts.bitnami.com/bitnami",
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"  ", true},
		{"BITNAMI", true},
		{"charts", true},
		{"jetstack", false},
		{"url:charts.bitnami", true},
		{"url:jetstack", false},
		{"name:bit", true},
		{"name:charts", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesFilter(repo, tt.query))
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	repos := []domain.ChartRepository{
		{Name: "zeta-charts"},
		{Name: "other"},
		{Name: "alpha-charts"},
	}

	assert.Equal(t, repos, Filter(repos, ""))
	assert.Equal(t, []domain.ChartRepository{{Name: "zeta-charts"}, {Name: "alpha-charts"}}, Filter(repos, "charts"))
	assert.Empty(t, Filter(repos, "nothing"))
}

func TestNavigatorKeepsSelectionVisible(t *testing.T) {
	n := NewNavigator()
	n.UpdateState(0, 0, 3, 10)

	sel, off := n.SetSelectedIndex(5)
	assert.Equal(t, 5, sel)
	assert.Equal(t, 3, off)

	sel, off = n.SetSelectedIndex(1)
	assert.Equal(t, 1, sel)
	assert.Equal(t, 1, off)

	sel, off = n.SetSelectedIndex(42)
	assert.Equal(t, 9, sel)
	assert.Equal(t, 7, off)

	sel, off = n.SetSelectedIndex(-3)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, off)
}

func TestNavigatorPaging(t *testing.T) {
	n := NewNavigator()
	n.UpdateState(0, 0, 4, 10)

	sel, _ := n.PageDown()
	assert.Equal(t, 3, sel)
	sel, _ = n.PageDown()
	assert.Equal(t, 6, sel)
	sel, _ = n.PageUp()
	assert.Equal(t, 3, sel)
	sel, _ = n.Move(1)
	assert.Equal(t, 4, sel)
}

func TestNavigatorShrinkingList(t *testing.T) {
	n := NewNavigator()
	n.UpdateState(8, 6, 3, 10)

	n.UpdateState(8, 6, 3, 2)
	sel, off := n.SetSelectedIndex(n.GetSelectedIndex())
	assert.Equal(t, 1, sel)
	assert.Equal(t, 0, off)

	n.UpdateState(0, 0, 3, 0)
	sel, off = n.SetSelectedIndex(0)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, off)
	assert.Equal(t, -1, n.GetMaxIndex())
}
