package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/pkg/spotlight"
)

const DefaultSearchLimit = 10

type ResultType string

const (
	ResultUnit     ResultType = "unidad"
	ResultPosition ResultType = "posicion"
	ResultPerson   ResultType = "persona"
)

type SearchResult struct {
	ID       string     `json:"id"`
	Type     ResultType `json:"type"`
	Name     string     `json:"name"`
	Subtitle string     `json:"subtitle,omitempty"`
	Level    *int       `json:"level,omitempty"`
}

const filteredSuffix = " (Filtered)"

// SearchIndex matches entity names against a free-text query.
// It reads the catalog snapshot on every call and keeps no index of its own.
type SearchIndex struct {
	catalog *Catalog
	levels  *LevelResolver
	log     *logrus.Logger
	limit   int
}

func NewSearchIndex(catalog *Catalog, levels *LevelResolver, log *logrus.Logger, limit int) *SearchIndex {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &SearchIndex{catalog: catalog, levels: levels, log: log, limit: limit}
}

func (s *SearchIndex) Limit() int {
	return s.limit
}

// fold lowercases s and strips combining marks so "Dirección" matches "direccion".
// Transformers keep state, so a fresh chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// Search returns at most Limit matches ordered units, positions, people.
// A malformed record never propagates: the whole call degrades to no results.
func (s *SearchIndex) Search(ctx context.Context, query string, scope entities.FilterSet) (results []SearchResult) {
	m := getMetrics()
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			m.searchTotal.WithLabelValues("failed").Inc()
			logWithFields(ctx, s.log, logrus.ErrorLevel, "orgnav.search.failed", logrus.Fields{
				"query": query,
				"panic": fmt.Sprint(r),
			})
			results = []SearchResult{}
		}
	}()

	results = s.collect(ctx, q, scope)
	m.searchResults.Observe(float64(len(results)))
	if len(results) == 0 {
		m.searchTotal.WithLabelValues("empty").Inc()
	} else {
		m.searchTotal.WithLabelValues("hit").Inc()
	}
	return results
}

func (s *SearchIndex) collect(ctx context.Context, q string, scope entities.FilterSet) []SearchResult {
	d := s.catalog.Dataset()
	filtered := scope.Active()
	suffix := ""
	if filtered {
		suffix = filteredSuffix
	}

	out := make([]SearchResult, 0, s.limit)
	full := func() bool { return len(out) >= s.limit }
	matches := func(fields ...string) bool {
		for _, f := range fields {
			if f != "" && strings.Contains(fold(f), q) {
				return true
			}
		}
		return false
	}

	for _, u := range d.Units {
		if full() {
			return out
		}
		if !scope.Allows(u.ID) || !matches(u.Name, u.ShortName) {
			continue
		}
		level := s.levels.levelOf(ctx, d, u.ID)
		out = append(out, SearchResult{
			ID:       diagram.UnitNodeID(u.ID),
			Type:     ResultUnit,
			Name:     u.Name,
			Subtitle: u.ShortName,
			Level:    &level,
		})
	}

	for _, p := range d.Positions {
		if full() {
			return out
		}
		if !scope.Allows(p.UnitID) || !matches(p.Name) {
			continue
		}
		subtitle := "Unit not found"
		if u, ok := d.Unit(p.UnitID); ok {
			subtitle = u.Name
		}
		out = append(out, SearchResult{
			ID:       diagram.PrefixedID(diagram.EntityPosition, fmt.Sprint(p.ID)),
			Type:     ResultPosition,
			Name:     p.Name,
			Subtitle: subtitle + suffix,
		})
	}

	for _, person := range d.People {
		if full() {
			return out
		}
		pos, unit, placed := d.PersonPlacement(person.ID)
		if filtered && (!placed || !scope.Allows(unit.ID)) {
			continue
		}
		name := person.FullName()
		if !matches(name, person.DocNumber) {
			continue
		}
		subtitle := "No assignment"
		if placed {
			subtitle = pos.Name + " · " + unit.Name
		}
		out = append(out, SearchResult{
			ID:       diagram.PrefixedID(diagram.EntityPerson, fmt.Sprint(person.ID)),
			Type:     ResultPerson,
			Name:     name,
			Subtitle: subtitle + suffix,
		})
	}
	return out
}

// Suggest offers fuzzy-ranked unit names for queries that have no substring hit.
func (s *SearchIndex) Suggest(query string, scope entities.FilterSet, limit int) []SearchResult {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	d := s.catalog.Dataset()

	items := spotlight.Items{}
	for _, u := range d.Units {
		if scope.Allows(u.ID) {
			items.Add(spotlight.NewItem(diagram.UnitNodeID(u.ID), u.Name))
		}
	}
	found := items.Find(query, limit)
	out := make([]SearchResult, 0, len(found))
	for _, item := range found {
		out = append(out, SearchResult{ID: item.Key, Type: ResultUnit, Name: item.Label})
	}
	return out
}
