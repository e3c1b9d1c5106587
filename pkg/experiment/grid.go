package experiment

import (
	"math"
	"time"
)

// ResultRow is one measured outcome of the grid, the tabular contract
// consumed by reports.
type ResultRow struct {
	Bucket       int     `json:"bucket_index"`
	Step         int     `json:"size_step"`
	Accuracy     float64 `json:"accuracy"` // NaN for a failed cell
	LabelBalance float64 `json:"label_balance"`
}

// Cell is one slot of the K×K grid. A cell is written exactly once, by the
// worker that evaluated it.
type Cell struct {
	Bucket       int
	Step         int
	Size         int
	Accuracy     float64
	LabelBalance float64
	Eval         Evaluation
	Duration     time.Duration
	Err          error
	done         bool
}

// Filled reports whether the cell was evaluated, successfully or not.
func (c *Cell) Filled() bool { return c.done }

// Failed reports whether the cell's evaluation returned an error.
func (c *Cell) Failed() bool { return c.Err != nil }

// Row returns the cell's ResultRow.
func (c *Cell) Row() ResultRow {
	return ResultRow{Bucket: c.Bucket, Step: c.Step, Accuracy: c.Accuracy, LabelBalance: c.LabelBalance}
}

// Grid is a pre-sized K×K arena indexed by (bucket, step), both 1-based.
// Distinct cells may be written concurrently without locking.
type Grid struct {
	K     int
	cells []Cell
}

// NewGrid allocates an empty K×K grid.
func NewGrid(k int) *Grid {
	g := &Grid{K: k, cells: make([]Cell, k*k)}
	for b := 1; b <= k; b++ {
		for s := 1; s <= k; s++ {
			c := g.At(b, s)
			c.Bucket, c.Step = b, s
			c.Accuracy, c.LabelBalance = math.NaN(), math.NaN()
		}
	}
	return g
}

// At returns the cell for (bucket, step).
func (g *Grid) At(bucket, step int) *Cell { return &g.cells[(bucket-1)*g.K+(step-1)] }

// Cells returns every cell in bucket-major order.
func (g *Grid) Cells() []Cell { return g.cells }

// Rows returns the ResultRows in bucket-major order.
func (g *Grid) Rows() []ResultRow {
	out := make([]ResultRow, len(g.cells))
	for i := range g.cells {
		out[i] = g.cells[i].Row()
	}
	return out
}

// Failed returns the number of failed cells.
func (g *Grid) Failed() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Failed() {
			n++
		}
	}
	return n
}
