package i

import (
	"context"

	"github.com/davidvelascogarcia/hns/grid"
)

// MapRepo loads occupancy maps by identifier. Every call returns a fresh
// grid, so callers own the result for the lifetime of one planning run.
type MapRepo interface {
	// ByName retrieves a map by its identifier.
	// Returns an error if the map is not found or cannot be parsed.
	ByName(ctx context.Context, name string) (*grid.Grid, error)
}
