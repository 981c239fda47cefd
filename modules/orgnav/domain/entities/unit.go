package entities

import (
	"sort"
	"strings"
)

// UnitKind classifies an organizational unit (direction, department, team, ...).
type UnitKind int

const (
	UnitKindDirection UnitKind = iota + 1
	UnitKindSubdirection
	UnitKindManagement
	UnitKindDepartment
	UnitKindArea
	UnitKindSection
	UnitKindTeam
	UnitKindOther
)

func (k UnitKind) Valid() bool {
	return k >= UnitKindDirection && k <= UnitKindOther
}

var unitKindNames = [...]string{"", "direction", "subdirection", "management", "department", "area", "section", "team", "other"}

func (k UnitKind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return unitKindNames[k]
}

type Unit struct {
	ID        int      `json:"id" yaml:"id" validate:"required,gt=0"`
	Name      string   `json:"name" yaml:"name" validate:"required"`
	ShortName string   `json:"short_name,omitempty" yaml:"short_name,omitempty"`
	ParentID  *int     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Kind      UnitKind `json:"kind" yaml:"kind" validate:"min=1,max=8"`
}

func (u Unit) IsRoot() bool {
	return u.ParentID == nil
}

type Position struct {
	ID     int    `json:"id" yaml:"id" validate:"required,gt=0"`
	UnitID int    `json:"unit_id" yaml:"unit_id" validate:"required,gt=0"`
	Name   string `json:"name" yaml:"name" validate:"required"`
}

type Person struct {
	ID        int    `json:"id" yaml:"id" validate:"required,gt=0"`
	FirstName string `json:"first_name" yaml:"first_name" validate:"required"`
	LastName1 string `json:"last_name1" yaml:"last_name1"`
	LastName2 string `json:"last_name2,omitempty" yaml:"last_name2,omitempty"`
	DocNumber string `json:"doc_number,omitempty" yaml:"doc_number,omitempty"`
}

// FullName joins the non-empty name parts.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FirstName, p.LastName1, p.LastName2} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type Assignment struct {
	PersonID   int `json:"person_id" yaml:"person_id" validate:"required,gt=0"`
	PositionID int `json:"position_id" yaml:"position_id" validate:"required,gt=0"`
}

// FilterSet is an externally owned set of unit ids. Empty means no filter.
type FilterSet map[int]struct{}

func NewFilterSet(ids ...int) FilterSet {
	fs := make(FilterSet, len(ids))
	for _, id := range ids {
		fs[id] = struct{}{}
	}
	return fs
}

func (fs FilterSet) Has(id int) bool {
	_, ok := fs[id]
	return ok
}

func (fs FilterSet) Active() bool {
	return len(fs) > 0
}

// Allows reports whether id is visible under the filter.
func (fs FilterSet) Allows(id int) bool {
	return !fs.Active() || fs.Has(id)
}

func (fs FilterSet) IDs() []int {
	out := make([]int, 0, len(fs))
	for id := range fs {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (fs FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(fs))
	for id := range fs {
		out[id] = struct{}{}
	}
	return out
}
