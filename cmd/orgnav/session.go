package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/domain/events"
	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/canvas"
	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/persistence"
	"github.com/iota-uz/orgnav/modules/orgnav/services"
	"github.com/iota-uz/orgnav/pkg/configuration"
)

// session is one loaded chart mounted on a headless canvas.
type session struct {
	log    *logrus.Logger
	engine *services.Engine
	canvas *canvas.Canvas
	close  func()
}

type sessionOptions struct {
	log         *logrus.Logger
	searchLimit int
}

func openProvider(ctx context.Context, cfg *configuration.Configuration) (services.EntityProvider, func(), error) {
	if cfg.DataSource != "postgres" {
		return persistence.NewDatasetFile(cfg.DatasetPath), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.Database.Opts)
	if err != nil {
		return nil, nil, withCode(exitData, fmt.Errorf("connect db: %w", err))
	}
	return persistence.NewEntityRepository(pool), pool.Close, nil
}

func datasetError(err error) error {
	if errors.Is(err, persistence.ErrInvalidDataset) {
		return withCode(exitValidation, err)
	}
	return withCode(exitData, err)
}

func openSession(ctx context.Context, cfg *configuration.Configuration, opts sessionOptions) (*session, error) {
	log := opts.log
	if log == nil {
		log = cfg.Logger()
	}

	var anchors map[int]diagram.Viewport
	if cfg.AnchorsPath != "" {
		a, err := persistence.LoadAnchors(cfg.AnchorsPath)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		anchors = a
	}

	provider, closeProvider, err := openProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limit := cfg.SearchLimit
	if opts.searchLimit > 0 {
		limit = opts.searchLimit
	}
	engine := services.NewEngine(nil, log, services.EngineOptions{
		Locator: services.LocatorOptions{
			MaxAttempts: cfg.Locator.MaxAttempts,
			Interval:    cfg.Locator.Interval,
			FitAttempt:  cfg.Locator.FitAttempt,
		},
		SearchLimit: limit,
		Panel:       services.PanelOptions{LevelCoordinates: anchors},
	})
	if err := engine.Catalog.Reload(ctx, provider); err != nil {
		closeProvider()
		return nil, datasetError(err)
	}
	subscribeAudit(engine, log)

	nodes, err := sessionNodes(cfg, engine.Catalog.Dataset())
	if err != nil {
		closeProvider()
		return nil, err
	}
	c := canvas.New(nodes, canvas.Options{
		Width:       cfg.Canvas.Width,
		Height:      cfg.Canvas.Height,
		RenderDelay: cfg.Canvas.RenderDelay,
		Virtualize:  cfg.Canvas.Virtualize,
	})
	engine.Viewport.Attach(c)

	return &session{
		log:    log,
		engine: engine,
		canvas: c,
		close: func() {
			engine.Locator.Cancel()
			engine.Viewport.Detach()
			closeProvider()
		},
	}, nil
}

// sessionNodes mounts the renderer's node positions when a nodes file is
// configured, and a hierarchy grid otherwise.
func sessionNodes(cfg *configuration.Configuration, d *entities.Dataset) ([]diagram.Node, error) {
	if cfg.NodesPath == "" {
		return canvas.Layout(d, canvas.LayoutOptions{}), nil
	}
	nodes, err := persistence.LoadNodes(cfg.NodesPath)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return nodes, nil
}

// subscribeAudit logs navigation events at info level.
func subscribeAudit(engine *services.Engine, log *logrus.Logger) {
	engine.Bus.Subscribe(func(e events.NodeFocused) {
		log.WithFields(logrus.Fields{
			"request_id": e.RequestID,
			"logical_id": e.LogicalID,
			"node_id":    e.NodeID,
			"level":      e.Level,
			"attempts":   e.Attempts,
		}).Info(events.TopicNodeFocusedV1)
	})
	engine.Bus.Subscribe(func(e events.NavigationAbandoned) {
		log.WithFields(logrus.Fields{
			"request_id": e.RequestID,
			"logical_id": e.LogicalID,
			"attempts":   e.Attempts,
		}).Info(events.TopicNavigationAbandonedV1)
	})
	engine.Bus.Subscribe(func(e events.LevelSelected) {
		log.WithFields(logrus.Fields{"level": e.Level, "via": e.Via}).Info(events.TopicLevelSelectedV1)
	})
	engine.Bus.Subscribe(func(e events.FiltersApplied) {
		log.WithFields(logrus.Fields{"units": len(e.UnitIDs), "cleared": e.Cleared}).Info(events.TopicFiltersAppliedV1)
	})
	engine.Bus.Subscribe(func(e events.ResultSelected) {
		log.WithFields(logrus.Fields{"result_id": e.ResultID, "type": e.Type}).Info(events.TopicResultSelectedV1)
	})
}
