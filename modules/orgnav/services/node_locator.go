package services

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/events"
	"github.com/iota-uz/orgnav/pkg/eventbus"
)

type LocatorOptions struct {
	MaxAttempts int
	Interval    time.Duration
	// FitAttempt is the attempt after which a single fit-to-screen is requested
	// so virtualized nodes outside the viewport get rendered.
	FitAttempt int
}

func DefaultLocatorOptions() LocatorOptions {
	return LocatorOptions{
		MaxAttempts: 50,
		Interval:    100 * time.Millisecond,
		FitAttempt:  3,
	}
}

// NodeLocator resolves logical entity ids to rendered diagram nodes and centers on them.
// Each Resolve call takes a new generation; an older call still polling gives up
// as soon as it notices a newer one.
type NodeLocator struct {
	catalog  *Catalog
	viewport *ViewportController
	levels   *LevelResolver
	bus      eventbus.EventBus
	log      *logrus.Logger
	opts     LocatorOptions

	generation atomic.Uint64
}

func NewNodeLocator(catalog *Catalog, viewport *ViewportController, levels *LevelResolver, bus eventbus.EventBus, log *logrus.Logger, opts LocatorOptions) *NodeLocator {
	def := DefaultLocatorOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.FitAttempt <= 0 {
		opts.FitAttempt = def.FitAttempt
	}
	return &NodeLocator{
		catalog:  catalog,
		viewport: viewport,
		levels:   levels,
		bus:      bus,
		log:      log,
		opts:     opts,
	}
}

// Cancel supersedes any resolution in flight.
func (l *NodeLocator) Cancel() {
	l.generation.Add(1)
}

// Candidates lists the node ids tried for a logical id, in lookup order:
// the entity's prefixed id, its bare id (units only), then the owning unit's
// prefixed and bare ids for positions and people.
func (l *NodeLocator) Candidates(logicalID string) []string {
	ref := diagram.ParseEntityRef(logicalID)
	if ref.Bare == "" {
		return nil
	}

	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(ids ...string) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	add(ref.PrefixedID())
	if ref.Type == diagram.EntityUnit {
		add(ref.Bare)
	}
	if unitID, ok := owningUnit(l.catalog.Dataset(), ref); ok {
		add(diagram.UnitNodeID(unitID), strconv.Itoa(unitID))
	}
	return out
}

func owningUnit(d *entities.Dataset, ref diagram.EntityRef) (int, bool) {
	id, ok := ref.NumericID()
	if !ok {
		return 0, false
	}
	switch ref.Type {
	case diagram.EntityPosition:
		if pos, found := d.Position(id); found {
			return pos.UnitID, true
		}
	case diagram.EntityPerson:
		if _, unit, found := d.PersonPlacement(id); found {
			return unit.ID, true
		}
	}
	return 0, false
}

func (l *NodeLocator) lookup(candidates []string) (diagram.Node, bool) {
	for _, id := range candidates {
		if node, ok := l.viewport.Node(id); ok {
			return node, true
		}
	}
	return diagram.Node{}, false
}

// Resolve polls the surface until one of the candidates is rendered, then centers on it.
// It reports whether the node was focused; misses, cancellation and supersession
// return false and never surface as errors.
func (l *NodeLocator) Resolve(ctx context.Context, logicalID string) bool {
	return l.resolve(ctx, l.generation.Add(1), logicalID)
}

// ResolveAsync starts a resolution in the background. The generation is taken
// before returning, so a later call always supersedes this one.
func (l *NodeLocator) ResolveAsync(ctx context.Context, logicalID string) <-chan bool {
	gen := l.generation.Add(1)
	done := make(chan bool, 1)
	go func() {
		done <- l.resolve(ctx, gen, logicalID)
	}()
	return done
}

func (l *NodeLocator) resolve(ctx context.Context, gen uint64, logicalID string) bool {
	requestID := uuid.New()
	m := getMetrics()

	candidates := l.Candidates(logicalID)
	fields := logrus.Fields{
		"request_id": requestID.String(),
		"logical_id": logicalID,
		"candidates": candidates,
	}
	if len(candidates) == 0 {
		m.locateTotal.WithLabelValues("abandoned").Inc()
		logWithFields(ctx, l.log, logrus.WarnLevel, "orgnav.locator.invalid_id", fields)
		return false
	}

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	attempt := 0
	for {
		if l.generation.Load() != gen {
			m.locateTotal.WithLabelValues("superseded").Inc()
			m.locateAttempts.Observe(float64(attempt))
			logWithFields(ctx, l.log, logrus.DebugLevel, "orgnav.locator.superseded", fields)
			return false
		}
		if ctx.Err() != nil {
			m.locateTotal.WithLabelValues("cancelled").Inc()
			m.locateAttempts.Observe(float64(attempt))
			return false
		}

		attempt++
		if node, ok := l.lookup(candidates); ok {
			l.viewport.CenterOnNode(ctx, node, CenterDuration)
			m.locateTotal.WithLabelValues("found").Inc()
			m.locateAttempts.Observe(float64(attempt))
			vp, _ := l.viewport.Viewport()
			l.publish(events.NodeFocused{
				RequestID: requestID,
				LogicalID: logicalID,
				NodeID:    node.ID,
				Level:     l.levelOf(node),
				Attempts:  attempt,
				Viewport:  vp,
				At:        time.Now(),
			})
			return true
		}
		if attempt == l.opts.FitAttempt {
			l.viewport.FitToScreen(ctx, DefaultFitPadding)
		}
		if attempt >= l.opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}

	m.locateTotal.WithLabelValues("abandoned").Inc()
	m.locateAttempts.Observe(float64(attempt))
	fields["attempts"] = attempt
	logWithFields(ctx, l.log, logrus.WarnLevel, "orgnav.locator.node_not_found", fields)
	l.publish(events.NavigationAbandoned{
		RequestID:  requestID,
		LogicalID:  logicalID,
		Candidates: candidates,
		Attempts:   attempt,
		At:         time.Now(),
	})
	return false
}

// levelOf places the focused node in the mounted hierarchy.
func (l *NodeLocator) levelOf(node diagram.Node) int {
	if l.levels == nil {
		return 0
	}
	return l.levels.LevelOfNode(node, l.viewport.Nodes())
}

func (l *NodeLocator) publish(event any) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(event)
}
