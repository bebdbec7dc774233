package grid

import (
	"errors"
	"fmt"
)

// Grid-related errors.
var (
	ErrOutOfBounds       = errors.New("position is out of the map")
	ErrInvalidTransition = errors.New("cell cannot be marked visited")
	ErrNotRectangular    = errors.New("map rows have unequal lengths")
	ErrEmptyMap          = errors.New("map has no cells")
	ErrUnknownStatus     = errors.New("unknown cell status code")
	ErrUnavailable       = errors.New("target location is not available")
)

// Status is the occupancy state of a single cell. The numeric values match
// the CSV map encoding: 0 free, 1 occupied, 2 visited, 3 start, 4 goal.
type Status int

const (
	Free Status = iota
	Occupied
	Visited
	Start
	Goal
)

// StatusFromCode maps a raw map-file code to a Status.
func StatusFromCode(code int) (Status, error) {
	if code < int(Free) || code > int(Goal) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return Status(code), nil
}

// Cell represents a single location in the occupancy grid.
type Cell struct {
	Status Status
}

// Position is a (row, column) pair on the grid. Row grows downward,
// column grows rightward.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Move is one discrete step command.
type Move int

const (
	Up Move = iota
	Down
	Left
	Right
	// ReachedGoal is emitted once, when the current position equals the
	// goal, and terminates the route.
	ReachedGoal
)

// Token returns the wire spelling of the move, as sent to an external
// executor.
func (m Move) Token() string {
	switch m {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case ReachedGoal:
		return "GOAL"
	}
	return "NONE"
}

func (m Move) String() string {
	return m.Token()
}

// Apply offsets a position by one unit in the move's direction.
// ReachedGoal does not displace.
func (m Move) Apply(p Position) Position {
	switch m {
	case Up:
		return Position{Row: p.Row - 1, Col: p.Col}
	case Down:
		return Position{Row: p.Row + 1, Col: p.Col}
	case Left:
		return Position{Row: p.Row, Col: p.Col - 1}
	case Right:
		return Position{Row: p.Row, Col: p.Col + 1}
	}
	return p
}

// Reverse returns the move in the opposite direction.
func (m Move) Reverse() Move {
	switch m {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return m
}
