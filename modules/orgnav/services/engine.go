package services

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/pkg/eventbus"
)

type EngineOptions struct {
	Locator     LocatorOptions
	SearchLimit int
	Panel       PanelOptions
	// Filters defaults to an empty in-memory store.
	Filters FilterStore
	// Bus defaults to a publisher logging through the engine logger.
	Bus eventbus.EventBus
}

// Engine wires one navigation session: a dataset snapshot, the services that
// read it and the panel driving them. Attach a surface to Viewport before navigating.
type Engine struct {
	Catalog  *Catalog
	Levels   *LevelResolver
	Viewport *ViewportController
	Locator  *NodeLocator
	Search   *SearchIndex
	Panel    *NavigationPanel
	Filters  FilterStore
	Bus      eventbus.EventBus
}

func NewEngine(d *entities.Dataset, log *logrus.Logger, opts EngineOptions) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	filters := opts.Filters
	if filters == nil {
		filters = NewMemoryFilterStore()
	}
	bus := opts.Bus
	if bus == nil {
		bus = eventbus.NewEventPublisher(log)
	}

	catalog := NewCatalog(d)
	levels := NewLevelResolver(catalog, log)
	viewport := NewViewportController(log)
	locator := NewNodeLocator(catalog, viewport, levels, bus, log, opts.Locator)
	search := NewSearchIndex(catalog, levels, log, opts.SearchLimit)
	panel := NewNavigationPanel(PanelDeps{
		Catalog:  catalog,
		Levels:   levels,
		Search:   search,
		Locator:  locator,
		Viewport: viewport,
		Filters:  filters,
		Bus:      bus,
		Log:      log,
	}, opts.Panel)

	return &Engine{
		Catalog:  catalog,
		Levels:   levels,
		Viewport: viewport,
		Locator:  locator,
		Search:   search,
		Panel:    panel,
		Filters:  filters,
		Bus:      bus,
	}
}
