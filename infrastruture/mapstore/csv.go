// Package mapstore provides occupancy map repositories. Map files are
// rectangular integer grids; each value maps to a cell status.
package mapstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davidvelascogarcia/hns/grid"
)

// Map store errors.
var (
	ErrMapNotFound = errors.New("map not found")
	ErrBadMapName  = errors.New("map name must be a plain file name")
)

// CSVRepo loads comma-delimited maps from a directory.
type CSVRepo struct {
	dir string
}

// NewCSVRepo creates a repository over the given map directory.
func NewCSVRepo(dir string) *CSVRepo {
	return &CSVRepo{dir: dir}
}

// ByName reads and parses the named map file.
func (r *CSVRepo) ByName(_ context.Context, name string) (*grid.Grid, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadMapName, name)
	}

	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing map %q: %w", name, err)
	}

	rows := make([][]grid.Status, len(records))
	for i, record := range records {
		rows[i] = make([]grid.Status, len(record))
		for j, field := range record {
			code, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("map %q row %d col %d: %w", name, i, j, err)
			}
			status, err := grid.StatusFromCode(code)
			if err != nil {
				return nil, fmt.Errorf("map %q row %d col %d: %w", name, i, j, err)
			}
			rows[i][j] = status
		}
	}

	g, err := grid.New(rows)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", name, err)
	}
	return g, nil
}
