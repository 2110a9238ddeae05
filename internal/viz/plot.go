package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/sweep"
)

// plottable replaces ±Inf with NaN; asciigraph leaves NaN as a gap.
func plottable(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if math.IsInf(x, 0) {
			x = math.NaN()
		}
		out[i] = x
	}
	return out
}

func hasFinite(v []float64) bool {
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

// Curve plots exponent-vs-parameter curves, one line per channel.
func Curve(s *sweep.Series, width, height int) string {
	if s == nil || s.Len() == 0 {
		return ""
	}

	var data [][]float64
	for ch := 0; ch < s.Exponents; ch++ {
		v := plottable(s.Channel(ch))
		if hasFinite(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return "(every point diverged)\n"
	}

	caption := fmt.Sprintf("%s: lambda vs %s in [%g, %g], %d points, %d diverged",
		s.Map, s.Param, s.Params[0], s.Params[len(s.Params)-1], s.Len(), s.Diverged())

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(data) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green))
	}
	return asciigraph.PlotMany(data, opts...)
}

// Line plots a single value series.
func Line(values []float64, caption string, width, height int) string {
	v := plottable(values)
	if !hasFinite(v) {
		return ""
	}
	return asciigraph.Plot(v,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// BifurcationPlot scatters attractor samples on a Braille canvas of
// width x height cells.
func BifurcationPlot(b *sweep.Bifurcation, width, height int) string {
	if b == nil || len(b.Branches) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	lo, hi, ok := b.Bounds()
	if !ok {
		return "(every point diverged)\n"
	}

	c := NewCanvas(width, height)
	f := NewFrame(c, b.Branches[0].Param, b.Branches[len(b.Branches)-1].Param, lo, hi)
	for _, br := range b.Branches {
		for _, v := range br.Values {
			f.Plot(br.Param, v)
		}
	}

	var sb strings.Builder
	sb.WriteString(c.String())
	fmt.Fprintf(&sb, "%s: x%d in [%.4g, %.4g] vs %s in [%g, %g]\n",
		b.Map, b.Component, lo, hi, b.Param, f.MinX, f.MaxX)
	return sb.String()
}

// PhasePlot scatters a phase portrait on a Braille canvas.
func PhasePlot(pp *analysis.PhasePortrait2D, width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	minX, maxX, minY, maxY := pp.Bounds()

	c := NewCanvas(width, height)
	f := NewFrame(c, minX, maxX, minY, maxY)
	for _, p := range pp.Points {
		f.Plot(p.X, p.Y)
	}

	var sb strings.Builder
	sb.WriteString(c.String())
	fmt.Fprintf(&sb, "x%d in [%.4g, %.4g], x%d in [%.4g, %.4g], %d points\n",
		pp.XIndex, minX, maxX, pp.YIndex, minY, maxY, len(pp.Points))
	return sb.String()
}
