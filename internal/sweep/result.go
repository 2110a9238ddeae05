package sweep

import (
	"math"
)

// Series is a 1-D sweep result. Values[i] holds the k exponents for
// Params[i]; a diverged point holds k NaNs.
type Series struct {
	Map       string
	Param     string
	Params    []float64
	Values    [][]float64
	Exponents int
}

func (s *Series) Len() int { return len(s.Params) }

// Valid reports whether point i produced finite data.
func (s *Series) Valid(i int) bool {
	return !math.IsNaN(s.Values[i][0])
}

// Channel returns exponent ch for every point, NaN where diverged.
func (s *Series) Channel(ch int) []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v[ch]
	}
	return out
}

// Diverged counts the invalid points.
func (s *Series) Diverged() int {
	n := 0
	for i := range s.Values {
		if !s.Valid(i) {
			n++
		}
	}
	return n
}

// Grid is a 2-D sweep result: Rows follow Axis2, Cols follow Axis1, and
// Data is row-major with Exponents values per cell.
type Grid struct {
	Map       string
	Param1    string
	Param2    string
	Axis1     []float64
	Axis2     []float64
	Rows      int
	Cols      int
	Exponents int
	Data      []float64
}

func newGrid(cols, rows, k int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Exponents: k, Data: make([]float64, rows*cols*k)}
}

func (g *Grid) offset(row, col int) int {
	return (row*g.Cols + col) * g.Exponents
}

// At returns exponent ch of the cell (row, col).
func (g *Grid) At(row, col, ch int) float64 {
	return g.Data[g.offset(row, col)+ch]
}

// Channel returns one exponent as a Rows x Cols matrix.
func (g *Grid) Channel(ch int) [][]float64 {
	out := make([][]float64, g.Rows)
	for r := range out {
		out[r] = make([]float64, g.Cols)
		for c := range out[r] {
			out[r][c] = g.At(r, c, ch)
		}
	}
	return out
}

// Range returns the finite min and max of one channel. ok is false when no
// cell is finite.
func (g *Grid) Range(ch int) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c, ch)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// Branch is the attractor sample set for one parameter value.
type Branch struct {
	Param  float64
	Values []float64
	Valid  bool
}

type Bifurcation struct {
	Map       string
	Param     string
	Component int
	Branches  []Branch
}

// Bounds returns the value range over all valid branches.
func (b *Bifurcation) Bounds() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, br := range b.Branches {
		for _, v := range br.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

func nanVector(k int) []float64 {
	v := make([]float64, k)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}
