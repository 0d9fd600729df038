// Package layout implements the grid layout planner.
package layout

import (
	"github.com/user/camgrid/pkg/pipeline"
)

// gridTable maps a source count to its grid. Index 0 is unused.
var gridTable = [...]pipeline.GridPlan{
	1:  {Columns: 1, Rows: 1},
	2:  {Columns: 2, Rows: 1},
	3:  {Columns: 3, Rows: 1},
	4:  {Columns: 2, Rows: 2},
	5:  {Columns: 3, Rows: 2},
	6:  {Columns: 3, Rows: 2},
	7:  {Columns: 4, Rows: 2},
	8:  {Columns: 4, Rows: 2},
	9:  {Columns: 3, Rows: 3},
	10: {Columns: 5, Rows: 2},
	11: {Columns: 4, Rows: 3},
	12: {Columns: 4, Rows: 3},
	13: {Columns: 4, Rows: 4},
	14: {Columns: 4, Rows: 4},
	15: {Columns: 5, Rows: 3},
	16: {Columns: 4, Rows: 4},
	17: {Columns: 5, Rows: 4},
	18: {Columns: 5, Rows: 4},
	19: {Columns: 5, Rows: 4},
	20: {Columns: 5, Rows: 4},
}

// Plan returns the grid for n sources. n must be at least 1.
// Counts beyond the table use a square grid of ceil(n/2) on each side.
func Plan(n int) pipeline.GridPlan {
	if n >= 1 && n < len(gridTable) {
		return gridTable[n]
	}
	side := (n + 1) / 2
	return pipeline.GridPlan{Columns: side, Rows: side}
}

// MaxResolution returns the largest width and the largest height over all sources.
// The two maxima may come from different sources.
func MaxResolution(sources []pipeline.SourceDescriptor) pipeline.Dimension {
	var d pipeline.Dimension
	for _, s := range sources {
		d.Width = max(d.Width, s.Width)
		d.Height = max(d.Height, s.Height)
	}
	return d
}

// CanvasSize returns the output canvas dimensions: one cell of the largest
// source resolution per grid position.
func CanvasSize(sources []pipeline.SourceDescriptor, plan pipeline.GridPlan) pipeline.Dimension {
	cell := MaxResolution(sources)
	return pipeline.Dimension{
		Width:  cell.Width * plan.Columns,
		Height: cell.Height * plan.Rows,
	}
}
