package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/sweep"
	"github.com/san-kum/chaoslab/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG converts a Braille canvas to one circle per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.Width) * scale * 2)
	height := int(float64(canvas.Height) * scale * 4)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG draws channel ch of a sweep as a polyline. Non-finite points
// start a new subpath.
func SeriesToSVG(s *sweep.Series, ch, width, height int, strokeColor string) string {
	if s == nil || s.Len() < 2 || ch < 0 || ch >= s.Exponents {
		return ""
	}
	ys := s.Channel(ch)

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		if finite(y) {
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	if math.IsInf(minY, 1) {
		return ""
	}
	minX, maxX := s.Params[0], s.Params[s.Len()-1]

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	if minY < 0 && maxY > 0 {
		zy := float64(height) - (0-minY)/rangeY*float64(height)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444466\" stroke-dasharray=\"4 4\"/>\n", zy, width, zy)
	}

	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", strokeColor)
	pen := false
	for i, p := range s.Params {
		y := ys[i]
		if !finite(y) {
			pen = false
			continue
		}
		px := (p - minX) / rangeX * float64(width)
		py := float64(height) - (y-minY)/rangeY*float64(height)
		if pen {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " M%.1f,%.1f", px, py)
			pen = true
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// divergingColor maps t in [0, 1] from blue through white to red.
func divergingColor(t float64) string {
	t = math.Max(0, math.Min(1, t))
	var r, g, b float64
	if t < 0.5 {
		s := t / 0.5
		r, g, b = 59+s*(255-59), 76+s*(255-76), 192+s*(255-192)
	} else {
		s := (t - 0.5) / 0.5
		r, g, b = 255-s*(255-180), 255-s*(255-4), 255-s*(255-38)
	}
	return fmt.Sprintf("#%02x%02x%02x", int(r), int(g), int(b))
}

// GridToSVG draws one channel of a plane sweep as cell x cell squares, Axis2
// growing upwards. Diverged cells are grey.
func GridToSVG(g *sweep.Grid, ch, cell int) string {
	if g == nil || g.Rows == 0 || g.Cols == 0 || ch < 0 || ch >= g.Exponents {
		return ""
	}
	lo, hi, ok := g.Range(ch)
	if !ok {
		lo, hi = 0, 1
	}

	width, height := g.Cols*cell, g.Rows*cell
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	for r := 0; r < g.Rows; r++ {
		y := (g.Rows - 1 - r) * cell
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c, ch)
			fill := "#555555"
			switch {
			case math.IsInf(v, -1):
				fill = divergingColor(0)
			case math.IsInf(v, 1):
				fill = divergingColor(1)
			case !math.IsNaN(v) && lo < 0 && hi > 0:
				if v < 0 {
					fill = divergingColor(0.5 * (1 - v/lo))
				} else {
					fill = divergingColor(0.5 + 0.5*v/hi)
				}
			case !math.IsNaN(v) && hi > lo:
				fill = divergingColor((v - lo) / (hi - lo))
			case !math.IsNaN(v):
				fill = divergingColor(0.5)
			}
			fmt.Fprintf(&sb, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", c*cell, y, cell, cell, fill)
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// ResultToSVG renders res as SVG: a polyline for sweeps, squares for planes,
// and dots for bifurcation diagrams and portraits.
func ResultToSVG(res *experiment.Result) (string, error) {
	switch {
	case res.Series != nil:
		return SeriesToSVG(res.Series, 0, 800, 400, "#00ccff"), nil
	case res.Grid != nil:
		return GridToSVG(res.Grid, 0, 6), nil
	case res.Bifurcation != nil:
		c := viz.NewCanvas(200, 60)
		b := res.Bifurcation
		lo, hi, ok := b.Bounds()
		if !ok {
			return "", fmt.Errorf("every point diverged")
		}
		f := viz.NewFrame(c, b.Branches[0].Param, b.Branches[len(b.Branches)-1].Param, lo, hi)
		for _, br := range b.Branches {
			for _, v := range br.Values {
				f.Plot(br.Param, v)
			}
		}
		return CanvasToSVG(c, 3), nil
	case res.Portrait != nil:
		c := viz.NewCanvas(120, 60)
		minX, maxX, minY, maxY := res.Portrait.Bounds()
		f := viz.NewFrame(c, minX, maxX, minY, maxY)
		for _, p := range res.Portrait.Points {
			f.Plot(p.X, p.Y)
		}
		return CanvasToSVG(c, 3), nil
	}
	return "", fmt.Errorf("%s result has no SVG rendering", res.Kind)
}
