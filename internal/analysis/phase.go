package analysis

import (
	"context"

	"github.com/san-kum/chaoslab/internal/dynamo"
	"github.com/san-kum/chaoslab/internal/orbit"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds the post-transient orbit projected on two components
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// Bounds returns the bounding box of the portrait.
func (pp *PhasePortrait2D) Bounds() (minX, maxX, minY, maxY float64) {
	if pp == nil || len(pp.Points) == 0 {
		return 0, 1, 0, 1
	}
	minX, maxX = pp.Points[0].X, pp.Points[0].X
	minY, maxY = pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return minX, maxX, minY, maxY
}

// PhasePortrait records an orbit in the (xIdx, yIdx) projection. For 1-D maps
// pass xIdx = yIdx = 0 to get the return map x_n -> x_{n+1}.
func PhasePortrait(ctx context.Context, m dynamo.Map, p dynamo.Params, x0 dynamo.State, cfg orbit.Config, xIdx, yIdx int) (*PhasePortrait2D, error) {
	if m == nil {
		return nil, dynamo.Invalidf("nil map")
	}
	d := m.Dim()
	if xIdx < 0 || xIdx >= d || yIdx < 0 || yIdx >= d {
		return nil, dynamo.Invalidf("projection (%d, %d) out of range for %d-dimensional map", xIdx, yIdx, d)
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, cfg.Measure),
	}
	returnMap := xIdx == yIdx

	next := make(dynamo.State, d)
	step := func(_ int, x dynamo.State) error {
		if returnMap {
			m.Apply(x, p, next)
			portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: next[xIdx]})
			return nil
		}
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
		return nil
	}

	cfg.Record = false
	if _, err := orbit.New(m, cfg).Run(ctx, p, x0, step); err != nil {
		return nil, err
	}
	return portrait, nil
}
