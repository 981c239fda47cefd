package diagram

import (
	"strconv"
	"strings"
)

type EntityType string

const (
	EntityUnit     EntityType = "unit"
	EntityPosition EntityType = "position"
	EntityPerson   EntityType = "person"
)

var entityTypes = []EntityType{EntityUnit, EntityPosition, EntityPerson}

// EntityRef is a parsed logical id such as "position-12".
type EntityRef struct {
	Raw  string
	Type EntityType
	// Bare is the id without prefix.
	Bare string
	// Prefixed reports whether Raw carried a recognized prefix.
	Prefixed bool
}

// ParseEntityRef normalizes a logical id. Bare ids belong to the unit namespace.
func ParseEntityRef(raw string) EntityRef {
	raw = strings.TrimSpace(raw)
	for _, t := range entityTypes {
		prefix := string(t) + "-"
		if strings.HasPrefix(raw, prefix) && len(raw) > len(prefix) {
			return EntityRef{Raw: raw, Type: t, Bare: raw[len(prefix):], Prefixed: true}
		}
	}
	return EntityRef{Raw: raw, Type: EntityUnit, Bare: raw}
}

// NumericID returns the bare id as an integer when it is one.
func (r EntityRef) NumericID() (int, bool) {
	id, err := strconv.Atoi(r.Bare)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (r EntityRef) PrefixedID() string {
	return PrefixedID(r.Type, r.Bare)
}

func PrefixedID(t EntityType, bare string) string {
	return string(t) + "-" + bare
}

func UnitNodeID(unitID int) string {
	return PrefixedID(EntityUnit, strconv.Itoa(unitID))
}
