package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/chaoslab/internal/analysis"
	"github.com/san-kum/chaoslab/internal/experiment"
	"github.com/san-kum/chaoslab/internal/sweep"
)

var channelColors = []color.Color{
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// segments splits (xs, ys) at non-finite ys; plotter rejects NaN and Inf.
func segments(xs, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if !finite(ys[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// SeriesPlot draws every exponent channel against the swept parameter with a
// zero line. Diverged points break the curve.
func SeriesPlot(s *sweep.Series) (*plot.Plot, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("empty series")
	}
	p := newPlot(fmt.Sprintf("%s Lyapunov exponents", s.Map), s.Param, "lambda")

	zero, err := plotter.NewLine(plotter.XYs{{X: s.Params[0], Y: 0}, {X: s.Params[s.Len()-1], Y: 0}})
	if err != nil {
		return nil, err
	}
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	zero.LineStyle.Color = color.Gray{Y: 0x80}
	p.Add(zero)

	for ch := 0; ch < s.Exponents; ch++ {
		segs := segments(s.Params, s.Channel(ch))
		for i, seg := range segs {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, err
			}
			line.LineStyle.Width = vg.Points(1.2)
			line.LineStyle.Color = channelColors[ch%len(channelColors)]
			p.Add(line)
			if i == 0 {
				p.Legend.Add(fmt.Sprintf("lambda%d", ch+1), line)
			}
		}
	}
	return p, nil
}

func scatter(pts plotter.XYs) (*plotter.Scatter, error) {
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(0.5)
	sc.GlyphStyle.Color = color.Black
	return sc, nil
}

// BifurcationPlot scatters attractor samples against the parameter.
func BifurcationPlot(b *sweep.Bifurcation) (*plot.Plot, error) {
	if b == nil {
		return nil, fmt.Errorf("empty bifurcation diagram")
	}
	var pts plotter.XYs
	for _, br := range b.Branches {
		for _, v := range br.Values {
			if finite(v) {
				pts = append(pts, plotter.XY{X: br.Param, Y: v})
			}
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("every point diverged")
	}

	p := newPlot(fmt.Sprintf("%s bifurcation diagram", b.Map), b.Param, fmt.Sprintf("x%d", b.Component))
	sc, err := scatter(pts)
	if err != nil {
		return nil, err
	}
	p.Add(sc)
	return p, nil
}

// PortraitPlot scatters a phase portrait or return map.
func PortraitPlot(pp *analysis.PhasePortrait2D) (*plot.Plot, error) {
	if pp == nil || len(pp.Points) == 0 {
		return nil, fmt.Errorf("empty phase portrait")
	}
	pts := make(plotter.XYs, 0, len(pp.Points))
	for _, q := range pp.Points {
		if finite(q.X) && finite(q.Y) {
			pts = append(pts, plotter.XY{X: q.X, Y: q.Y})
		}
	}

	ylabel := fmt.Sprintf("x%d", pp.YIndex)
	if pp.XIndex == pp.YIndex {
		ylabel += " next"
	}
	p := newPlot("phase portrait", fmt.Sprintf("x%d", pp.XIndex), ylabel)
	sc, err := scatter(pts)
	if err != nil {
		return nil, err
	}
	p.Add(sc)
	return p, nil
}

// DistancePlot shows separation growth on a log axis. Zero distances are
// dropped.
func DistancePlot(dist []float64, rate float64) (*plot.Plot, error) {
	var pts plotter.XYs
	for i, d := range dist {
		if finite(d) && d > 0 {
			pts = append(pts, plotter.XY{X: float64(i + 1), Y: d})
		}
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("not enough positive distances to plot")
	}

	p := newPlot(fmt.Sprintf("separation growth, rate %.4g", rate), "step", "distance")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.2)
	p.Add(line)
	return p, nil
}

// gridXYZ adapts one channel of a sweep grid to plotter.GridXYZ.
type gridXYZ struct {
	g      *sweep.Grid
	ch     int
	lo, hi float64
}

func (g gridXYZ) Dims() (c, r int)   { return g.g.Cols, g.g.Rows }
func (g gridXYZ) Z(c, r int) float64 { return g.g.At(r, c, g.ch) }
func (g gridXYZ) X(c int) float64    { return g.g.Axis1[c] }
func (g gridXYZ) Y(r int) float64    { return g.g.Axis2[r] }
func (g gridXYZ) Min() float64       { return g.lo }
func (g gridXYZ) Max() float64       { return g.hi }

// GridPlot renders one channel of a plane sweep as a blue-red heat map.
func GridPlot(g *sweep.Grid, ch int) (*plot.Plot, error) {
	if g == nil || g.Rows < 2 || g.Cols < 2 {
		return nil, fmt.Errorf("heat map needs at least a 2x2 grid")
	}
	if ch < 0 || ch >= g.Exponents {
		return nil, fmt.Errorf("channel %d out of range", ch)
	}
	lo, hi, ok := g.Range(ch)
	if !ok {
		return nil, fmt.Errorf("every point diverged")
	}
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(gridXYZ{g: g, ch: ch, lo: lo, hi: hi}, cm.Palette(255))
	hm.Underflow = color.Black
	hm.Overflow = color.White

	p := newPlot(fmt.Sprintf("%s lambda%d", g.Map, ch+1), g.Param1, g.Param2)
	p.Add(hm)
	return p, nil
}

// ResultPlot picks the plot matching the result's data.
func ResultPlot(res *experiment.Result) (*plot.Plot, error) {
	switch {
	case res.Series != nil:
		return SeriesPlot(res.Series)
	case res.Grid != nil:
		return GridPlot(res.Grid, 0)
	case res.Bifurcation != nil:
		return BifurcationPlot(res.Bifurcation)
	case res.Portrait != nil:
		return PortraitPlot(res.Portrait)
	case res.Distances != nil:
		return DistancePlot(res.Distances, res.Rate)
	}
	return nil, fmt.Errorf("%s result has nothing to plot", res.Kind)
}

// WritePNG renders p at the given size in inches and 150 dpi.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes the plot for res to path.
func SavePNG(path string, res *experiment.Result) error {
	p, err := ResultPlot(res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()
	return WritePNG(f, p, 8, 6)
}
