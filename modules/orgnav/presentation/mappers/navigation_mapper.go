package mappers

import (
	"sort"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
	"github.com/iota-uz/orgnav/modules/orgnav/services"
)

func SearchResultToViewModel(r services.SearchResult) viewmodels.SearchResult {
	return viewmodels.SearchResult{
		ID:       r.ID,
		Type:     string(r.Type),
		Name:     r.Name,
		Subtitle: r.Subtitle,
		Level:    r.Level,
	}
}

func SearchResultsToViewModels(results []services.SearchResult) []viewmodels.SearchResult {
	out := make([]viewmodels.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResultToViewModel(r))
	}
	return out
}

// LevelStatsToRows orders level buckets by level.
func LevelStatsToRows(stats map[int]services.LevelCount) []viewmodels.LevelRow {
	rows := make([]viewmodels.LevelRow, 0, len(stats))
	for lvl, c := range stats {
		rows = append(rows, viewmodels.LevelRow{
			Level:     lvl,
			Units:     c.Units,
			Positions: c.Positions,
			People:    c.People,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })
	return rows
}

func ViewportToViewModel(v diagram.Viewport) *viewmodels.Viewport {
	return &viewmodels.Viewport{X: v.X, Y: v.Y, Zoom: v.Zoom}
}
