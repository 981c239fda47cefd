package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/canvas"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// orgDataset is a small chart:
//
//	1 Dirección General
//	├─ 2 Finanzas
//	│  └─ 4 Tesorería
//	└─ 3 Recursos Humanos
func orgDataset() *entities.Dataset {
	return entities.NewDataset(
		[]entities.Unit{
			{ID: 1, Name: "Dirección General", ShortName: "DG", Kind: entities.UnitKindDirection},
			{ID: 2, Name: "Finanzas", ShortName: "FIN", ParentID: intPtr(1), Kind: entities.UnitKindDepartment},
			{ID: 3, Name: "Recursos Humanos", ShortName: "RRHH", ParentID: intPtr(1), Kind: entities.UnitKindDepartment},
			{ID: 4, Name: "Tesorería", ShortName: "TES", ParentID: intPtr(2), Kind: entities.UnitKindArea},
		},
		[]entities.Position{
			{ID: 10, UnitID: 1, Name: "Director General"},
			{ID: 20, UnitID: 2, Name: "Jefe de Finanzas"},
			{ID: 30, UnitID: 3, Name: "Analista de Personal"},
			{ID: 40, UnitID: 4, Name: "Tesorero"},
		},
		[]entities.Person{
			{ID: 100, FirstName: "Ana", LastName1: "Ruiz", DocNumber: "V-111"},
			{ID: 200, FirstName: "José", LastName1: "Pérez", DocNumber: "V-222"},
			{ID: 300, FirstName: "María", LastName1: "Gómez", LastName2: "Díaz", DocNumber: "V-333"},
			{ID: 400, FirstName: "Luis", LastName1: "Andrade"},
		},
		[]entities.Assignment{
			{PersonID: 100, PositionID: 10},
			{PersonID: 200, PositionID: 40},
			{PersonID: 300, PositionID: 30},
			{PersonID: 200, PositionID: 20},
		},
	)
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func entriesWith(hook *test.Hook, level logrus.Level, msg string) []logrus.Entry {
	out := make([]logrus.Entry, 0)
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			out = append(out, *e)
		}
	}
	return out
}

type engine struct {
	catalog  *Catalog
	levels   *LevelResolver
	viewport *ViewportController
	locator  *NodeLocator
	search   *SearchIndex
	canvas   *canvas.Canvas
	log      *logrus.Logger
	hook     *test.Hook
}

func fastLocator() LocatorOptions {
	return LocatorOptions{MaxAttempts: 50, Interval: time.Millisecond, FitAttempt: 3}
}

func newEngine(t *testing.T, d *entities.Dataset, nodes []diagram.Node, opts canvas.Options) *engine {
	t.Helper()
	log, hook := newTestLogger()
	catalog := NewCatalog(d)
	viewport := NewViewportController(log)
	c := canvas.New(nodes, opts)
	viewport.Attach(c)
	levels := NewLevelResolver(catalog, log)
	e := &engine{
		catalog:  catalog,
		levels:   levels,
		viewport: viewport,
		locator:  NewNodeLocator(catalog, viewport, levels, nil, log, fastLocator()),
		search:   NewSearchIndex(catalog, levels, log, DefaultSearchLimit),
		canvas:   c,
		log:      log,
		hook:     hook,
	}
	require.NotNil(t, e.canvas)
	return e
}
