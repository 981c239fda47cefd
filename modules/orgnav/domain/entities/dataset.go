package entities

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxHierarchyDepth bounds every upward walk over parent links.
const MaxHierarchyDepth = 10

// Dataset is a read-only snapshot of the entities loaded for one navigation session.
type Dataset struct {
	Units       []Unit       `json:"units" yaml:"units" validate:"dive"`
	Positions   []Position   `json:"positions" yaml:"positions" validate:"dive"`
	People      []Person     `json:"people" yaml:"people" validate:"dive"`
	Assignments []Assignment `json:"assignments" yaml:"assignments" validate:"dive"`

	once  sync.Once
	index *datasetIndex
}

type datasetIndex struct {
	units      map[int]*Unit
	positions  map[int]*Position
	people     map[int]*Person
	assignment map[int]*Assignment
}

func NewDataset(units []Unit, positions []Position, people []Person, assignments []Assignment) *Dataset {
	return &Dataset{
		Units:       units,
		Positions:   positions,
		People:      people,
		Assignments: assignments,
	}
}

func (d *Dataset) idx() *datasetIndex {
	d.once.Do(func() {
		ix := &datasetIndex{
			units:      make(map[int]*Unit, len(d.Units)),
			positions:  make(map[int]*Position, len(d.Positions)),
			people:     make(map[int]*Person, len(d.People)),
			assignment: make(map[int]*Assignment, len(d.People)),
		}
		for i := range d.Units {
			ix.units[d.Units[i].ID] = &d.Units[i]
		}
		for i := range d.Positions {
			ix.positions[d.Positions[i].ID] = &d.Positions[i]
		}
		for i := range d.People {
			ix.people[d.People[i].ID] = &d.People[i]
		}
		// the first assignment of a person wins
		for i := range d.Assignments {
			a := &d.Assignments[i]
			if _, ok := ix.assignment[a.PersonID]; !ok {
				ix.assignment[a.PersonID] = a
			}
		}
		d.index = ix
	})
	return d.index
}

func (d *Dataset) Unit(id int) (*Unit, bool) {
	u, ok := d.idx().units[id]
	return u, ok
}

func (d *Dataset) Position(id int) (*Position, bool) {
	p, ok := d.idx().positions[id]
	return p, ok
}

func (d *Dataset) Person(id int) (*Person, bool) {
	p, ok := d.idx().people[id]
	return p, ok
}

// ActiveAssignment returns the assignment consulted for navigation.
func (d *Dataset) ActiveAssignment(personID int) (*Assignment, bool) {
	a, ok := d.idx().assignment[personID]
	return a, ok
}

// PersonPlacement resolves the active position and owning unit of a person.
func (d *Dataset) PersonPlacement(personID int) (*Position, *Unit, bool) {
	a, ok := d.ActiveAssignment(personID)
	if !ok {
		return nil, nil, false
	}
	pos, ok := d.Position(a.PositionID)
	if !ok {
		return nil, nil, false
	}
	unit, ok := d.Unit(pos.UnitID)
	if !ok {
		return pos, nil, false
	}
	return pos, unit, true
}

// Ancestors lists the ancestor ids of a unit, nearest first.
// Dangling parent references end the walk; the walk is bounded by MaxHierarchyDepth.
func (d *Dataset) Ancestors(unitID int) []int {
	out := make([]int, 0, 4)
	u, ok := d.Unit(unitID)
	for ok && !u.IsRoot() && len(out) < MaxHierarchyDepth {
		parent, found := d.Unit(*u.ParentID)
		if !found || parent.ID == unitID {
			break
		}
		out = append(out, parent.ID)
		u = parent
	}
	return out
}

// Children returns direct children of a unit in dataset order.
func (d *Dataset) Children(unitID int) []Unit {
	out := make([]Unit, 0)
	for _, u := range d.Units {
		if u.ParentID != nil && *u.ParentID == unitID {
			out = append(out, u)
		}
	}
	return out
}

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Validate checks field constraints and cross references.
func (d *Dataset) Validate() error {
	if err := validate().Struct(d); err != nil {
		return err
	}

	var errs []error
	seen := make(map[int]struct{}, len(d.Units))
	for _, u := range d.Units {
		if _, dup := seen[u.ID]; dup {
			errs = append(errs, fmt.Errorf("unit %d: duplicate id", u.ID))
		}
		seen[u.ID] = struct{}{}
	}
	for _, u := range d.Units {
		if u.ParentID == nil {
			continue
		}
		if *u.ParentID == u.ID {
			errs = append(errs, fmt.Errorf("unit %d: parent references itself", u.ID))
			continue
		}
		if _, ok := d.Unit(*u.ParentID); !ok {
			errs = append(errs, fmt.Errorf("unit %d: parent %d not found", u.ID, *u.ParentID))
		}
	}
	for _, p := range d.Positions {
		if _, ok := d.Unit(p.UnitID); !ok {
			errs = append(errs, fmt.Errorf("position %d: unit %d not found", p.ID, p.UnitID))
		}
	}
	for _, a := range d.Assignments {
		if _, ok := d.Person(a.PersonID); !ok {
			errs = append(errs, fmt.Errorf("assignment: person %d not found", a.PersonID))
		}
		if _, ok := d.Position(a.PositionID); !ok {
			errs = append(errs, fmt.Errorf("assignment: position %d not found", a.PositionID))
		}
	}
	return errors.Join(errs...)
}
