package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/events"
	"github.com/iota-uz/orgnav/pkg/eventbus"
)

type PanelMode string

const (
	ModeClosed    PanelMode = "closed"
	ModeIdle      PanelMode = "open-idle"
	ModeSearching PanelMode = "open-searching"
	ModeFiltering PanelMode = "open-filtering"
	ModeMinimap   PanelMode = "open-minimap"
)

func (m PanelMode) Open() bool {
	return m != ModeClosed && m != ""
}

type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

const (
	MinimapStep = 100.0
	// MinimapZoomStep is the factor applied by one zoom-in step.
	MinimapZoomStep = 1.25
)

// PanFunc moves the viewport to an absolute position.
type PanFunc func(v diagram.Viewport)

// LevelNavigator is a caller-owned shortcut for level jumps. It reports whether it handled the level.
type LevelNavigator func(level int, pan PanFunc) bool

type PanelOptions struct {
	// LevelCoordinates are precomputed layout anchors keyed by level.
	LevelCoordinates map[int]diagram.Viewport
	NavigateToLevel  LevelNavigator
}

type LevelCount struct {
	Units     int `json:"units"`
	Positions int `json:"positions"`
	People    int `json:"people"`
}

type PanelStats struct {
	Units            int `json:"units"`
	Positions        int `json:"positions"`
	People           int `json:"people"`
	VisibleUnits     int `json:"visible_units"`
	VisiblePositions int `json:"visible_positions"`
	VisiblePeople    int `json:"visible_people"`
	MaxLevel         int `json:"max_level"`
}

// PanelState is a copy of the panel's UI state.
type PanelState struct {
	Mode          PanelMode
	SearchFocused bool
	Query         string
	Results       []SearchResult
	Suggestions   []SearchResult
	Selection     []int
}

// NavigationPanel orchestrates search, level jumps, filter selection and the minimap.
// It never writes the viewport itself; every movement goes through the locator
// or the viewport controller.
type NavigationPanel struct {
	catalog  *Catalog
	levels   *LevelResolver
	search   *SearchIndex
	locator  *NodeLocator
	viewport *ViewportController
	filters  FilterStore
	bus      eventbus.EventBus
	log      *logrus.Logger
	opts     PanelOptions

	mu          sync.Mutex
	mode        PanelMode
	focused     bool
	query       string
	results     []SearchResult
	suggestions []SearchResult
	selection   entities.FilterSet
}

type PanelDeps struct {
	Catalog  *Catalog
	Levels   *LevelResolver
	Search   *SearchIndex
	Locator  *NodeLocator
	Viewport *ViewportController
	Filters  FilterStore
	Bus      eventbus.EventBus
	Log      *logrus.Logger
}

func NewNavigationPanel(deps PanelDeps, opts PanelOptions) *NavigationPanel {
	filters := deps.Filters
	if filters == nil {
		filters = NewMemoryFilterStore()
	}
	return &NavigationPanel{
		catalog:   deps.Catalog,
		levels:    deps.Levels,
		search:    deps.Search,
		locator:   deps.Locator,
		viewport:  deps.Viewport,
		filters:   filters,
		bus:       deps.Bus,
		log:       deps.Log,
		opts:      opts,
		mode:      ModeClosed,
		selection: entities.FilterSet{},
	}
}

func (p *NavigationPanel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PanelState{
		Mode:          p.mode,
		SearchFocused: p.focused,
		Query:         p.query,
		Results:       append([]SearchResult(nil), p.results...),
		Suggestions:   append([]SearchResult(nil), p.suggestions...),
		Selection:     p.selection.IDs(),
	}
}

func (p *NavigationPanel) Mode() PanelMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Open shows the panel with the search input focused.
func (p *NavigationPanel) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mode.Open() {
		p.mode = ModeIdle
	}
	p.focused = true
}

// Close hides the panel and clears the query.
func (p *NavigationPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeClosed
	p.focused = false
	p.query = ""
	p.results = nil
	p.suggestions = nil
}

// SetQuery searches within the external filter. A blank query returns the panel to idle.
func (p *NavigationPanel) SetQuery(ctx context.Context, q string) []SearchResult {
	scope := p.filters.Units()
	results := p.search.Search(ctx, q, scope)
	var suggestions []SearchResult
	if len(results) == 0 && strings.TrimSpace(q) != "" {
		suggestions = p.search.Suggest(q, scope, 5)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = q
	p.results = results
	p.suggestions = suggestions
	p.focused = true
	if strings.TrimSpace(q) == "" {
		p.mode = ModeIdle
	} else {
		p.mode = ModeSearching
	}
	return append([]SearchResult(nil), results...)
}

// SelectResult focuses the diagram on a result through the node locator.
func (p *NavigationPanel) SelectResult(ctx context.Context, r SearchResult) bool {
	p.publish(events.ResultSelected{ResultID: r.ID, Type: string(r.Type), At: time.Now()})
	return p.locator.Resolve(ctx, r.ID)
}

// SelectResultAsync starts focusing a result in the background. The locator
// generation is taken before it returns, so a later selection supersedes this one.
func (p *NavigationPanel) SelectResultAsync(ctx context.Context, r SearchResult) <-chan bool {
	p.publish(events.ResultSelected{ResultID: r.ID, Type: string(r.Type), At: time.Now()})
	return p.locator.ResolveAsync(ctx, r.ID)
}

// LevelStats buckets visible units, positions and people by hierarchy level.
func (p *NavigationPanel) LevelStats(ctx context.Context) map[int]LevelCount {
	d := p.catalog.Dataset()
	unitLevels := p.levels.UnitLevels(ctx, p.filters.Units())

	out := make(map[int]LevelCount)
	for _, u := range d.Units {
		lvl, ok := unitLevels[u.ID]
		if !ok {
			continue
		}
		c := out[lvl]
		c.Units++
		out[lvl] = c
	}
	for _, pos := range d.Positions {
		lvl, ok := unitLevels[pos.UnitID]
		if !ok {
			continue
		}
		c := out[lvl]
		c.Positions++
		out[lvl] = c
	}
	for _, person := range d.People {
		_, unit, placed := d.PersonPlacement(person.ID)
		if !placed {
			continue
		}
		lvl, ok := unitLevels[unit.ID]
		if !ok {
			continue
		}
		c := out[lvl]
		c.People++
		out[lvl] = c
	}
	return out
}

// Levels lists the levels holding at least one visible unit, ascending.
func (p *NavigationPanel) Levels(ctx context.Context) []int {
	stats := p.LevelStats(ctx)
	out := make([]int, 0, len(stats))
	for lvl, c := range stats {
		if c.Units > 0 {
			out = append(out, lvl)
		}
	}
	sort.Ints(out)
	return out
}

// GoToLevel jumps to a hierarchy level. A caller-supplied navigator wins, then
// precomputed coordinates, then the first visible node at that level. Node
// levels come from the mounted node set; without one the dataset levels apply.
func (p *NavigationPanel) GoToLevel(ctx context.Context, level int) bool {
	if nav := p.opts.NavigateToLevel; nav != nil {
		pan := func(v diagram.Viewport) {
			zoom := v.Zoom
			p.viewport.PanTo(ctx, v.X, v.Y, &zoom)
		}
		if nav(level, pan) {
			p.publish(events.LevelSelected{Level: level, Via: "navigator", At: time.Now()})
			return true
		}
	}
	if v, ok := p.opts.LevelCoordinates[level]; ok {
		zoom := v.Zoom
		p.viewport.PanTo(ctx, v.X, v.Y, &zoom)
		p.publish(events.LevelSelected{Level: level, Via: "coordinates", At: time.Now()})
		return true
	}

	d := p.catalog.Dataset()
	scope := p.filters.Units()
	if nodes := p.viewport.Nodes(); len(nodes) > 0 {
		nodeLevels := p.levels.NodeLevels(nodes)
		for _, n := range nodes {
			if nodeLevels[n.ID] == level && nodeInScope(d, scope, n) {
				p.publish(events.LevelSelected{Level: level, Via: "node", At: time.Now()})
				return p.locator.Resolve(ctx, n.ID)
			}
		}
	} else {
		unitLevels := p.levels.UnitLevels(ctx, scope)
		for _, u := range d.Units {
			if lvl, ok := unitLevels[u.ID]; ok && lvl == level {
				p.publish(events.LevelSelected{Level: level, Via: "unit", At: time.Now()})
				return p.locator.Resolve(ctx, diagram.UnitNodeID(u.ID))
			}
		}
	}
	logWithFields(ctx, p.log, logrus.WarnLevel, "orgnav.panel.level_empty", logrus.Fields{"level": level})
	return false
}

// nodeInScope reports whether a mounted node belongs to a unit allowed by scope.
// Nodes that do not map to a known unit are always in scope.
func nodeInScope(d *entities.Dataset, scope entities.FilterSet, n diagram.Node) bool {
	if !scope.Active() {
		return true
	}
	ref := diagram.ParseEntityRef(n.ID)
	unitID, ok := owningUnit(d, ref)
	if !ok && ref.Type == diagram.EntityUnit {
		id, numeric := ref.NumericID()
		if _, known := d.Unit(id); numeric && known {
			unitID, ok = id, true
		}
	}
	return !ok || scope.Allows(unitID)
}

// OpenFilter starts a local selection seeded from the external filter.
func (p *NavigationPanel) OpenFilter() {
	units := p.filters.Units()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = units.Clone()
	p.mode = ModeFiltering
	p.focused = false
}

// ToggleUnit removes a selected unit, or selects it together with its ancestors.
func (p *NavigationPanel) ToggleUnit(unitID int) {
	d := p.catalog.Dataset()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection.Has(unitID) {
		delete(p.selection, unitID)
		return
	}
	if _, ok := d.Unit(unitID); !ok {
		return
	}
	p.selection[unitID] = struct{}{}
	for _, id := range d.Ancestors(unitID) {
		p.selection[id] = struct{}{}
	}
}

func (p *NavigationPanel) SelectAll() {
	d := p.catalog.Dataset()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = make(entities.FilterSet, len(d.Units))
	for _, u := range d.Units {
		p.selection[u.ID] = struct{}{}
	}
}

func (p *NavigationPanel) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selection = entities.FilterSet{}
}

func (p *NavigationPanel) Selection() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.IDs()
}

// ApplyFilter writes the local selection back to the filter store.
// An empty selection clears the filter.
func (p *NavigationPanel) ApplyFilter(ctx context.Context) {
	p.mu.Lock()
	ids := p.selection.IDs()
	p.mode = ModeIdle
	p.mu.Unlock()

	p.writeFilter(ctx, ids)
}

// ReplaceFilter sets the external filter to units plus their ancestors in a
// single write. Unknown units are skipped and the local selection is left alone,
// so concurrent callers each leave a filter one of them asked for.
func (p *NavigationPanel) ReplaceFilter(ctx context.Context, unitIDs []int) []int {
	d := p.catalog.Dataset()
	set := make(entities.FilterSet, len(unitIDs))
	for _, id := range unitIDs {
		if _, ok := d.Unit(id); !ok {
			continue
		}
		set[id] = struct{}{}
		for _, a := range d.Ancestors(id) {
			set[a] = struct{}{}
		}
	}
	ids := set.IDs()
	p.writeFilter(ctx, ids)
	return ids
}

func (p *NavigationPanel) writeFilter(ctx context.Context, ids []int) {
	if len(ids) == 0 {
		p.filters.ClearFilters()
	} else {
		p.filters.FilterUnits(ids)
	}
	logWithFields(ctx, p.log, logrus.InfoLevel, "orgnav.panel.filters_applied", logrus.Fields{"units": len(ids)})
	p.publish(events.FiltersApplied{UnitIDs: ids, Cleared: len(ids) == 0, At: time.Now()})
}

func (p *NavigationPanel) OpenMinimap() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeMinimap
	p.focused = false
}

// PanMinimap moves the view one step; "up" brings content above the view into sight.
func (p *NavigationPanel) PanMinimap(ctx context.Context, dir Direction) {
	var dx, dy float64
	switch dir {
	case DirectionUp:
		dy = MinimapStep
	case DirectionDown:
		dy = -MinimapStep
	case DirectionLeft:
		dx = MinimapStep
	case DirectionRight:
		dx = -MinimapStep
	default:
		logWithFields(ctx, p.log, logrus.WarnLevel, "orgnav.panel.unknown_direction", logrus.Fields{"direction": dir})
		return
	}
	p.viewport.PanBy(ctx, dx, dy)
}

// ZoomMinimap scales the view around the screen center; factors above 1 zoom in.
func (p *NavigationPanel) ZoomMinimap(ctx context.Context, factor float64) {
	p.viewport.ZoomBy(ctx, factor)
}

func (p *NavigationPanel) FitMinimap(ctx context.Context) {
	p.viewport.FitToScreen(ctx, DefaultFitPadding)
}

func (p *NavigationPanel) Stats(ctx context.Context) PanelStats {
	d := p.catalog.Dataset()
	stats := PanelStats{
		Units:     len(d.Units),
		Positions: len(d.Positions),
		People:    len(d.People),
	}
	for lvl, c := range p.LevelStats(ctx) {
		stats.VisibleUnits += c.Units
		stats.VisiblePositions += c.Positions
		stats.VisiblePeople += c.People
		if lvl > stats.MaxLevel {
			stats.MaxLevel = lvl
		}
	}
	return stats
}

func (p *NavigationPanel) publish(event any) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(event)
}
