package storage

import (
	"fmt"

	"github.com/san-kum/chaoslab/internal/experiment"
)

// Table is the tabular form of a result as written to values.csv.
type Table struct {
	Header []string
	Rows   [][]float64
}

func lambdaHeader(k int) []string {
	h := make([]string, k)
	for i := range h {
		h[i] = fmt.Sprintf("lambda%d", i+1)
	}
	return h
}

// TableOf flattens a result. Diverged points keep their row with NaN values.
func TableOf(res *experiment.Result) (*Table, error) {
	switch {
	case res.Series != nil:
		s := res.Series
		t := &Table{Header: append([]string{s.Param}, lambdaHeader(s.Exponents)...)}
		for i, p := range s.Params {
			t.Rows = append(t.Rows, append([]float64{p}, s.Values[i]...))
		}
		return t, nil

	case res.Grid != nil:
		g := res.Grid
		t := &Table{Header: append([]string{g.Param1, g.Param2}, lambdaHeader(g.Exponents)...)}
		for r := 0; r < g.Rows; r++ {
			for c := 0; c < g.Cols; c++ {
				row := []float64{g.Axis1[c], g.Axis2[r]}
				for ch := 0; ch < g.Exponents; ch++ {
					row = append(row, g.At(r, c, ch))
				}
				t.Rows = append(t.Rows, row)
			}
		}
		return t, nil

	case res.Bifurcation != nil:
		b := res.Bifurcation
		t := &Table{Header: []string{b.Param, fmt.Sprintf("x%d", b.Component)}}
		for _, br := range b.Branches {
			if !br.Valid {
				t.Rows = append(t.Rows, []float64{br.Param, nan()})
				continue
			}
			for _, v := range br.Values {
				t.Rows = append(t.Rows, []float64{br.Param, v})
			}
		}
		return t, nil

	case res.Portrait != nil:
		pp := res.Portrait
		t := &Table{Header: []string{fmt.Sprintf("x%d", pp.XIndex), fmt.Sprintf("x%d", pp.YIndex)}}
		if pp.XIndex == pp.YIndex {
			t.Header[1] = fmt.Sprintf("x%d_next", pp.YIndex)
		}
		for _, p := range pp.Points {
			t.Rows = append(t.Rows, []float64{p.X, p.Y})
		}
		return t, nil

	case res.Distances != nil:
		t := &Table{Header: []string{"step", "distance"}}
		for i, d := range res.Distances {
			t.Rows = append(t.Rows, []float64{float64(i + 1), d})
		}
		return t, nil

	case res.Exponents != nil:
		return &Table{Header: lambdaHeader(len(res.Exponents)), Rows: [][]float64{res.Exponents}}, nil
	}
	return nil, fmt.Errorf("result %q has no data", res.Name)
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) []float64 {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if idx < len(r) {
			out = append(out, r[idx])
		}
	}
	return out
}
