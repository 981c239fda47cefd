package services

import (
	"sync"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
)

// FilterStore owns the unit filter shared by the diagram and the navigation panel.
type FilterStore interface {
	Units() entities.FilterSet
	FilterUnits(ids []int)
	ClearFilters()
}

type MemoryFilterStore struct {
	mu    sync.RWMutex
	units entities.FilterSet
}

func NewMemoryFilterStore(ids ...int) *MemoryFilterStore {
	return &MemoryFilterStore{units: entities.NewFilterSet(ids...)}
}

// Units returns a copy; callers may mutate it freely.
func (s *MemoryFilterStore) Units() entities.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units.Clone()
}

func (s *MemoryFilterStore) FilterUnits(ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = entities.NewFilterSet(ids...)
}

func (s *MemoryFilterStore) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = entities.FilterSet{}
}
