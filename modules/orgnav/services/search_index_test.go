package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

func newSearchIndex(d *entities.Dataset, limit int) (*SearchIndex, *logrus.Logger) {
	log, _ := newTestLogger()
	catalog := NewCatalog(d)
	return NewSearchIndex(catalog, NewLevelResolver(catalog, log), log, limit), log
}

func TestSearchIndex_SinglePerson(t *testing.T) {
	idx, _ := newSearchIndex(entities.NewDataset(nil, nil, []entities.Person{
		{ID: 5, FirstName: "Ana", LastName1: "Ruiz"},
	}, nil), 0)

	results := idx.Search(context.Background(), "ana", nil)
	require.Len(t, results, 1)
	require.Equal(t, ResultPerson, results[0].Type)
	require.Equal(t, "person-5", results[0].ID)
	require.Equal(t, "Ana Ruiz", results[0].Name)
	require.Equal(t, "No assignment", results[0].Subtitle)
	require.Nil(t, results[0].Level)
}

func TestSearchIndex_OrdersUnitsPositionsPeople(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)

	results := idx.Search(context.Background(), "tesor", nil)
	require.Len(t, results, 2)

	require.Equal(t, "unit-4", results[0].ID)
	require.Equal(t, ResultUnit, results[0].Type)
	require.Equal(t, "TES", results[0].Subtitle)
	require.NotNil(t, results[0].Level)
	require.Equal(t, 2, *results[0].Level)

	require.Equal(t, "position-40", results[1].ID)
	require.Equal(t, ResultPosition, results[1].Type)
	require.Equal(t, "Tesorería", results[1].Subtitle)
}

func TestSearchIndex_FoldsCaseAndAccents(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)
	ctx := context.Background()

	results := idx.Search(ctx, "DIRECCION", nil)
	require.Len(t, results, 1)
	require.Equal(t, "unit-1", results[0].ID)

	results = idx.Search(ctx, "perez", nil)
	require.Len(t, results, 1)
	require.Equal(t, "person-200", results[0].ID)
	require.Equal(t, "Tesorero · Tesorería", results[0].Subtitle)
}

func TestSearchIndex_MatchesShortNameAndDocNumber(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)
	ctx := context.Background()

	results := idx.Search(ctx, "rrhh", nil)
	require.Len(t, results, 1)
	require.Equal(t, "unit-3", results[0].ID)

	results = idx.Search(ctx, "v-333", nil)
	require.Len(t, results, 1)
	require.Equal(t, "person-300", results[0].ID)
	require.Equal(t, "María Gómez Díaz", results[0].Name)
	require.Equal(t, "Analista de Personal · Recursos Humanos", results[0].Subtitle)
}

func TestSearchIndex_ScopeRestrictsAndAnnotates(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)

	results := idx.Search(context.Background(), "a", entities.NewFilterSet(2, 4))
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
		if r.Type != ResultUnit {
			require.True(t, strings.HasSuffix(r.Subtitle, "(Filtered)"), r.Subtitle)
		}
	}
	require.Equal(t, []string{"unit-2", "unit-4", "position-20"}, ids)
}

func TestSearchIndex_ScopeDropsUnassignedPeople(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)
	ctx := context.Background()

	require.Len(t, idx.Search(ctx, "luis", nil), 1)
	require.Empty(t, idx.Search(ctx, "luis", entities.NewFilterSet(1, 2, 3, 4)))
}

func TestSearchIndex_HardCap(t *testing.T) {
	units := make([]entities.Unit, 0, 8)
	for i := 1; i <= 8; i++ {
		units = append(units, entities.Unit{ID: i, Name: fmt.Sprintf("Sala %d", i), Kind: entities.UnitKindOther})
	}
	positions := make([]entities.Position, 0, 5)
	for i := 1; i <= 5; i++ {
		positions = append(positions, entities.Position{ID: 100 + i, UnitID: 1, Name: fmt.Sprintf("Jefe de sala %d", i)})
	}
	d := entities.NewDataset(units, positions, nil, nil)
	ctx := context.Background()

	idx, _ := newSearchIndex(d, 0)
	results := idx.Search(ctx, "sala", nil)
	require.Len(t, results, DefaultSearchLimit)
	require.Equal(t, "unit-8", results[7].ID)
	require.Equal(t, "position-101", results[8].ID)
	require.Equal(t, "position-102", results[9].ID)

	small, _ := newSearchIndex(d, 3)
	require.Len(t, small.Search(ctx, "sala", nil), 3)
	require.Equal(t, 3, small.Limit())
}

func TestSearchIndex_BlankQuery(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)
	require.Empty(t, idx.Search(context.Background(), "   ", nil))
}

func TestSearchIndex_RecoversFromBrokenIndex(t *testing.T) {
	log, hook := newTestLogger()
	idx := NewSearchIndex(nil, nil, log, 0)

	var results []SearchResult
	require.NotPanics(t, func() {
		results = idx.Search(context.Background(), "ana", nil)
	})
	require.NotNil(t, results)
	require.Empty(t, results)
	require.Len(t, entriesWith(hook, logrus.ErrorLevel, "orgnav.search.failed"), 1)
}

func TestSearchIndex_Suggest(t *testing.T) {
	idx, _ := newSearchIndex(orgDataset(), 0)

	require.Empty(t, idx.Search(context.Background(), "tsr", nil))
	suggestions := idx.Suggest("tsr", nil, 5)
	require.NotEmpty(t, suggestions)
	require.Equal(t, "unit-4", suggestions[0].ID)
	require.Equal(t, ResultUnit, suggestions[0].Type)

	require.Empty(t, idx.Suggest("tsr", entities.NewFilterSet(1, 2), 5))
}

// owningUnitOf maps a result back to the unit it belongs to.
func owningUnitOf(d *entities.Dataset, r SearchResult) (int, bool) {
	ref := diagram.ParseEntityRef(r.ID)
	id, ok := ref.NumericID()
	if !ok {
		return 0, false
	}
	switch r.Type {
	case ResultUnit:
		return id, true
	case ResultPosition:
		if p, found := d.Position(id); found {
			return p.UnitID, true
		}
	case ResultPerson:
		if _, u, found := d.PersonPlacement(id); found {
			return u.ID, true
		}
	}
	return 0, false
}

func TestSearchIndex_Properties(t *testing.T) {
	d := orgDataset()
	idx, _ := newSearchIndex(d, 0)
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("results stay inside the scope", prop.ForAll(
		func(scopeIDs []int, q string) bool {
			scope := entities.NewFilterSet(scopeIDs...)
			for _, r := range idx.Search(context.Background(), q, scope) {
				unitID, ok := owningUnitOf(d, r)
				if !ok || !scope.Allows(unitID) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(2, gen.IntRange(1, 4)),
		gen.OneConstOf("a", "e", "o", "r", "n", "de", "ti"),
	))

	properties.Property("never more than the limit", prop.ForAll(
		func(q string) bool {
			return len(idx.Search(context.Background(), q, nil)) <= DefaultSearchLimit
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
