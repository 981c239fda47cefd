package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/diagram"
)

const (
	TopicNodeFocusedV1         = "orgnav.node.focused.v1"
	TopicNavigationAbandonedV1 = "orgnav.navigation.abandoned.v1"
	TopicLevelSelectedV1       = "orgnav.level.selected.v1"
	TopicFiltersAppliedV1      = "orgnav.filters.applied.v1"
	TopicResultSelectedV1      = "orgnav.result.selected.v1"
)

type NodeFocused struct {
	RequestID uuid.UUID
	LogicalID string
	NodeID    string
	// Level is the node's depth in the mounted hierarchy.
	Level     int
	Attempts  int
	Viewport  diagram.Viewport
	At        time.Time
}

type NavigationAbandoned struct {
	RequestID  uuid.UUID
	LogicalID  string
	Candidates []string
	Attempts   int
	At         time.Time
}

type LevelSelected struct {
	Level int
	// Via is one of "navigator", "coordinates", "node", "unit".
	Via string
	At  time.Time
}

type FiltersApplied struct {
	UnitIDs []int
	Cleared bool
	At      time.Time
}

type ResultSelected struct {
	ResultID string
	Type     string
	At       time.Time
}
