// Package planner implements the directional greedy decision rule that
// picks the next step toward the goal. It is a heuristic, not a shortest
// path search: on maps that are only solvable by crossing a cell twice it
// reports a deadlock instead of backtracking.
package planner

import (
	"errors"

	"github.com/davidvelascogarcia/hns/grid"
)

// ErrDeadlock is returned when none of the four candidate moves leads to a
// traversable cell.
var ErrDeadlock = errors.New("no traversable candidate move")

// Next decides the single move to take from current toward goal. The
// traversable predicate carries the grid occupancy and the route history;
// the planner itself keeps no state between calls.
//
// The decision rule prefers the axis with the larger remaining distance
// (the row axis on ties), then the other axis, then their opposite
// directions as fallback, evaluated in that order. The first candidate
// whose resulting position is traversable wins.
func Next(current, goal grid.Position, traversable func(grid.Position) bool) (grid.Move, error) {
	if current == goal {
		return grid.ReachedGoal, nil
	}

	deltaRow := goal.Row - current.Row
	deltaCol := goal.Col - current.Col

	var primary, secondary grid.Move
	if abs(deltaRow) >= abs(deltaCol) {
		primary = vertical(deltaRow)
		secondary = horizontal(deltaCol)
	} else {
		primary = horizontal(deltaCol)
		secondary = vertical(deltaRow)
	}

	candidates := [4]grid.Move{primary, secondary, secondary.Reverse(), primary.Reverse()}
	for _, m := range candidates {
		if traversable(m.Apply(current)) {
			return m, nil
		}
	}

	return 0, ErrDeadlock
}

// vertical maps a row delta to a move; a zero delta defaults to the
// positive direction, which only matters when the axis is taken as
// fallback.
func vertical(deltaRow int) grid.Move {
	if deltaRow < 0 {
		return grid.Up
	}
	return grid.Down
}

func horizontal(deltaCol int) grid.Move {
	if deltaCol < 0 {
		return grid.Left
	}
	return grid.Right
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
