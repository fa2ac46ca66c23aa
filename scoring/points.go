// Package scoring converts tournament finishing order into season points.
package scoring

import "errors"

// ErrInvalidInput signals a non-positive field size or placement, which is a
// caller bug rather than a user error.
var ErrInvalidInput = errors.New("scoring: field size and placement must be positive")

// referenceFieldSize is the entrant count at which a placement is worth exactly
// its base value. Awards scale linearly with the actual field, so a win over 64
// players outweighs a win over 10.
const referenceFieldSize = 50

// Table maps a finishing placement to its base point value. Placements absent
// from the table fall back to the default, so the bottom of the field still
// earns a token point. The zero value is a table that awards nothing; build
// one with NewTable or DefaultTable.
type Table struct {
	base     map[int]int
	fallback int
}

// NewTable copies base so the resulting Table is immutable from the caller's
// point of view.
func NewTable(base map[int]int, fallback int) Table {
	cp := make(map[int]int, len(base))
	for placement, points := range base {
		cp[placement] = points
	}
	return Table{base: cp, fallback: fallback}
}

// DefaultTable is the club's standard payout curve.
func DefaultTable() Table {
	return NewTable(map[int]int{
		1:  100,
		2:  70,
		3:  60,
		4:  50,
		5:  40,
		6:  30,
		7:  25,
		8:  20,
		9:  15,
		10: 10,
	}, 1)
}

// Base returns the base point value for a placement.
func (t Table) Base(placement int) int {
	if points, ok := t.base[placement]; ok {
		return points
	}
	return t.fallback
}

// Calculate returns the points awarded for finishing at placement in a field
// of fieldSize entrants: floor(base * fieldSize / referenceFieldSize).
// It is a pure function; the same inputs always yield the same award.
func Calculate(table Table, fieldSize, placement int) (int, error) {
	if fieldSize <= 0 || placement <= 0 {
		return 0, ErrInvalidInput
	}
	return table.Base(placement) * fieldSize / referenceFieldSize, nil
}
