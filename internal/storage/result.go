package storage

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/config"
	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/sweep"
)

// LoadResult rebuilds the result of a saved run from its values.csv.
func (s *Store) LoadResult(runID string) (*experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	t, err := s.LoadValues(runID)
	if err != nil {
		return nil, err
	}
	return ResultOf(meta, t)
}

func componentOf(col string) (int, error) {
	var c int
	if _, err := fmt.Sscanf(col, "x%d", &c); err != nil {
		return 0, fmt.Errorf("bad component column %q", col)
	}
	return c, nil
}

// ResultOf is the inverse of TableOf for a run of kind meta.Kind.
func ResultOf(meta *RunMetadata, t *Table) (*experiment.Result, error) {
	res := &experiment.Result{
		Name:    meta.Name,
		Kind:    meta.Kind,
		Map:     meta.Map,
		Params:  meta.Params,
		Init:    meta.Init,
		Elapsed: meta.Elapsed,
	}
	bad := func(format string, args ...any) error {
		return fmt.Errorf("run %s: %s", meta.ID, fmt.Sprintf(format, args...))
	}

	switch meta.Kind {
	case config.KindLyapunov:
		if len(t.Rows) != 1 {
			return nil, bad("want one row of exponents, have %d", len(t.Rows))
		}
		res.Exponents = t.Rows[0]

	case config.KindSweep, config.KindSpectrum:
		if len(t.Header) < 2 {
			return nil, bad("sweep table needs a parameter and an exponent column")
		}
		s := &sweep.Series{Map: meta.Map, Param: t.Header[0], Exponents: len(t.Header) - 1}
		for _, r := range t.Rows {
			s.Params = append(s.Params, r[0])
			s.Values = append(s.Values, r[1:])
		}
		res.Series = s

	case config.KindPlane:
		if len(t.Header) < 3 || len(t.Rows) == 0 {
			return nil, bad("plane table needs two parameters and an exponent column")
		}
		cols := 1
		for cols < len(t.Rows) && t.Rows[cols][1] == t.Rows[0][1] {
			cols++
		}
		if len(t.Rows)%cols != 0 {
			return nil, bad("%d rows do not form a grid of %d columns", len(t.Rows), cols)
		}
		k := len(t.Header) - 2
		g := &sweep.Grid{
			Map:       meta.Map,
			Param1:    t.Header[0],
			Param2:    t.Header[1],
			Rows:      len(t.Rows) / cols,
			Cols:      cols,
			Exponents: k,
			Data:      make([]float64, 0, len(t.Rows)*k),
		}
		for i, r := range t.Rows {
			if i < cols {
				g.Axis1 = append(g.Axis1, r[0])
			}
			if i%cols == 0 {
				g.Axis2 = append(g.Axis2, r[1])
			}
			g.Data = append(g.Data, r[2:]...)
		}
		res.Grid = g

	case config.KindBifurcation:
		if len(t.Header) != 2 {
			return nil, bad("bifurcation table needs two columns")
		}
		c, err := componentOf(t.Header[1])
		if err != nil {
			return nil, bad("%v", err)
		}
		b := &sweep.Bifurcation{Map: meta.Map, Param: t.Header[0], Component: c}
		for _, r := range t.Rows {
			n := len(b.Branches)
			if n == 0 || b.Branches[n-1].Param != r[0] {
				b.Branches = append(b.Branches, sweep.Branch{Param: r[0], Valid: !math.IsNaN(r[1])})
				n++
			}
			if !math.IsNaN(r[1]) {
				b.Branches[n-1].Values = append(b.Branches[n-1].Values, r[1])
			}
		}
		res.Bifurcation = b

	case config.KindOrbit:
		if len(t.Header) != 2 {
			return nil, bad("orbit table needs two columns")
		}
		x, err := componentOf(t.Header[0])
		if err != nil {
			return nil, bad("%v", err)
		}
		y, err := componentOf(t.Header[1])
		if err != nil {
			return nil, bad("%v", err)
		}
		pp := &analysis.PhasePortrait2D{XIndex: x, YIndex: y, Points: make([]analysis.Point, 0, len(t.Rows))}
		for _, r := range t.Rows {
			pp.Points = append(pp.Points, analysis.Point{X: r[0], Y: r[1]})
		}
		res.Portrait = pp

	case config.KindSensitivity:
		res.Distances = t.Column("distance")
		if res.Distances == nil {
			return nil, bad("no distance column")
		}
		rate, err := analysis.GrowthRate(res.Distances)
		if err != nil {
			rate = math.NaN()
		}
		res.Rate = rate

	default:
		return nil, bad("unknown kind %q", meta.Kind)
	}
	return res, nil
}
