package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chaoslab/internal/sweep"
)

// shades runs from most negative to most positive exponent.
const shades = " .:-=+*#%@"

// Heatmap renders one channel of a plane sweep as a shaded character grid,
// Axis2 growing upwards. Diverged cells print as '?'. Cells are scaled so
// that zero sits at the boundary between the regular and chaotic halves of
// the ramp when the range straddles it.
func Heatmap(g *sweep.Grid, channel int) string {
	if g == nil || g.Rows == 0 || g.Cols == 0 {
		return ""
	}
	lo, hi, ok := g.Range(channel)
	if !ok {
		return "(every point diverged)\n"
	}

	var b strings.Builder
	for r := g.Rows - 1; r >= 0; r-- {
		fmt.Fprintf(&b, "%10.4g |", g.Axis2[r])
		for c := 0; c < g.Cols; c++ {
			b.WriteByte(shade(g.At(r, c, channel), lo, hi))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%10s +%s\n", "", strings.Repeat("-", g.Cols))
	fmt.Fprintf(&b, "%10s  %s: [%g, %g]  %s: [%g, %g]\n", "",
		g.Param1, g.Axis1[0], g.Axis1[len(g.Axis1)-1],
		g.Param2, g.Axis2[0], g.Axis2[len(g.Axis2)-1])
	fmt.Fprintf(&b, "%10s  lambda%d in [%.4g, %.4g]\n", "", channel+1, lo, hi)
	return b.String()
}

func shade(v, lo, hi float64) byte {
	if math.IsNaN(v) {
		return '?'
	}
	n := len(shades)
	var t float64
	switch {
	case math.IsInf(v, -1):
		t = 0
	case math.IsInf(v, 1):
		t = 1
	case lo < 0 && hi > 0:
		// split the ramp at zero
		if v < 0 {
			t = 0.5 * (1 - v/lo)
		} else {
			t = 0.5 + 0.5*v/hi
		}
	case hi > lo:
		t = (v - lo) / (hi - lo)
	default:
		t = 0.5
	}
	idx := int(t * float64(n-1))
	idx = min(max(idx, 0), n-1)
	return shades[idx]
}
