package grid

import "strings"

// Grid is a rectangular occupancy map. Dimensions are fixed after
// construction; the only mutation allowed afterwards is the per-cell
// Free -> Visited transition applied while a route passes through.
type Grid struct {
	cells  [][]Cell
	width  int
	height int
}

// New builds a grid from per-row statuses. The rows must be non-empty and
// rectangular, and may carry at most one Start and one Goal cell.
func New(rows [][]Status) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMap
	}

	width := len(rows[0])
	starts, goals := 0, 0
	cells := make([][]Cell, len(rows))
	for r, row := range rows {
		if len(row) != width {
			return nil, ErrNotRectangular
		}
		cells[r] = make([]Cell, width)
		for c, s := range row {
			switch s {
			case Start:
				starts++
			case Goal:
				goals++
			}
			cells[r][c] = Cell{Status: s}
		}
	}

	if starts > 1 || goals > 1 {
		return nil, ErrUnavailable
	}

	return &Grid{
		cells:  cells,
		width:  width,
		height: len(rows),
	}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// CellCount is the total number of cells, used as the route step bound.
func (g *Grid) CellCount() int { return g.width * g.height }

// InBounds reports whether the position lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.height && p.Col >= 0 && p.Col < g.width
}

// CellAt returns the cell at the given position.
func (g *Grid) CellAt(p Position) (Cell, error) {
	if !g.InBounds(p) {
		return Cell{}, ErrOutOfBounds
	}
	return g.cells[p.Row][p.Col], nil
}

// IsTraversable reports whether a route may enter the position: it must be
// in bounds and not occupied nor already crossed.
func (g *Grid) IsTraversable(p Position) bool {
	if !g.InBounds(p) {
		return false
	}
	s := g.cells[p.Row][p.Col].Status
	return s == Free || s == Start || s == Goal
}

// MarkVisited records that the route passed through the position.
// Free cells transition to Visited. Start and Goal cells are singular
// points and keep their status so they stay recognizable on the map;
// the call is a no-op for them. Marking an occupied or already visited
// cell is an invariant violation.
func (g *Grid) MarkVisited(p Position) error {
	if !g.InBounds(p) {
		return ErrOutOfBounds
	}
	switch g.cells[p.Row][p.Col].Status {
	case Free:
		g.cells[p.Row][p.Col].Status = Visited
		return nil
	case Start, Goal:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// AssignTargets stamps the start and goal locations onto the grid. Any
// previously assigned targets revert to free, so explicit coordinates
// override targets embedded in the map file. Both locations must be free.
func (g *Grid) AssignTargets(start, goal Position) error {
	if !g.InBounds(start) || !g.InBounds(goal) {
		return ErrOutOfBounds
	}

	for r := range g.cells {
		for c := range g.cells[r] {
			if s := g.cells[r][c].Status; s == Start || s == Goal {
				g.cells[r][c].Status = Free
			}
		}
	}

	if g.cells[start.Row][start.Col].Status != Free ||
		g.cells[goal.Row][goal.Col].Status != Free ||
		start == goal {
		return ErrUnavailable
	}

	g.cells[start.Row][start.Col].Status = Start
	g.cells[goal.Row][goal.Col].Status = Goal
	return nil
}

// Clone returns an independent copy of the grid, so a planning run can
// mark its trail without touching the loaded map.
func (g *Grid) Clone() *Grid {
	cells := make([][]Cell, g.height)
	for r := range g.cells {
		cells[r] = make([]Cell, g.width)
		copy(cells[r], g.cells[r])
	}
	return &Grid{cells: cells, width: g.width, height: g.height}
}

// String renders the grid for console display: walls as "||", the crossed
// trail as ".", start as "S" and goal as "E".
func (g *Grid) String() string {
	var output strings.Builder

	output.WriteString("+" + strings.Repeat("--", g.width) + "+\n")
	for r := 0; r < g.height; r++ {
		output.WriteString("|")
		for c := 0; c < g.width; c++ {
			switch g.cells[r][c].Status {
			case Occupied:
				output.WriteString("||")
			case Visited:
				output.WriteString(". ")
			case Start:
				output.WriteString("S ")
			case Goal:
				output.WriteString("E ")
			default:
				output.WriteString("  ")
			}
		}
		output.WriteString("|\n")
	}
	output.WriteString("+" + strings.Repeat("--", g.width) + "+")

	return output.String()
}
