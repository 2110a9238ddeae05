// Package tangent carries a frame of tangent vectors along an orbit and
// keeps it orthonormal with periodic QR renormalization.
package tangent

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// OverflowCeiling bounds an acceptable per-step growth magnitude.
const OverflowCeiling = 1e100

// GrowthError reports a renormalization step whose growth magnitude is
// zero, NaN or above OverflowCeiling. It unwraps to dynamo.ErrDiverged.
type GrowthError struct {
	Direction int
	Growth    float64
}

func (e *GrowthError) Error() string {
	return fmt.Sprintf("%s: tangent growth %g in direction %d", dynamo.ErrDiverged, e.Growth, e.Direction)
}

func (e *GrowthError) Unwrap() error { return dynamo.ErrDiverged }

// Collapsed reports an exactly zero growth: J annihilated the direction, as
// on a superstable cycle.
func (e *GrowthError) Collapsed() bool { return e.Growth == 0 }

// Propagator owns a d x k tangent frame for the lifetime of one orbit.
type Propagator struct {
	d, k     int
	interval int
	steps    int

	frame  []float64 // column-major d x k
	next   []float64
	q      []float64
	rdiag  []float64
	growth []float64
	qr     *householder
}

// New returns a propagator whose frame is the first k columns of the d x d
// identity. interval is the renormalization period; values below 1 mean
// every step.
func New(d, k, interval int) (*Propagator, error) {
	if d <= 0 {
		return nil, dynamo.Invalidf("dimension must be positive, got %d", d)
	}
	if k <= 0 || k > d {
		return nil, dynamo.Invalidf("subspace size k=%d must satisfy 1 <= k <= d=%d", k, d)
	}
	if interval < 1 {
		interval = 1
	}

	p := &Propagator{
		d:        d,
		k:        k,
		interval: interval,
		frame:    make([]float64, d*k),
		next:     make([]float64, d*k),
		q:        make([]float64, d*k),
		rdiag:    make([]float64, k),
		growth:   make([]float64, k),
		qr:       newHouseholder(d, k),
	}
	p.Reset()
	return p, nil
}

func (p *Propagator) Dim() int      { return p.d }
func (p *Propagator) Subspace() int { return p.k }
func (p *Propagator) Interval() int { return p.interval }

// Reset restores the identity frame and the step counter.
func (p *Propagator) Reset() {
	for i := range p.frame {
		p.frame[i] = 0
	}
	for c := 0; c < p.k; c++ {
		p.frame[c*p.d+c] = 1
	}
	p.steps = 0
}

// Advance left-multiplies the frame by J. On renormalization steps it
// replaces the frame with the Q factor of its QR decomposition and returns
// |diag(R)| with renormalized = true. The growth slice is reused by the next
// call. A zero, NaN or overflowing growth magnitude yields a *GrowthError
// together with the growth of the directions before it; the frame is then
// unusable until Reset.
func (p *Propagator) Advance(j *dynamo.Matrix) (growth []float64, renormalized bool, err error) {
	if j.Rows != p.d || j.Cols != p.d {
		return nil, false, dynamo.Invalidf("jacobian is %dx%d, frame dimension is %d", j.Rows, j.Cols, p.d)
	}

	d := p.d
	for c := 0; c < p.k; c++ {
		j.MulVec(p.frame[c*d:(c+1)*d], p.next[c*d:(c+1)*d])
	}
	p.frame, p.next = p.next, p.frame
	p.steps++

	if p.steps%p.interval != 0 {
		return nil, false, nil
	}

	p.qr.factor(p.frame, p.q, p.rdiag)
	for c, r := range p.rdiag {
		g := math.Abs(r)
		p.growth[c] = g
		if g == 0 || math.IsNaN(g) || g > OverflowCeiling {
			return p.growth, true, &GrowthError{Direction: c, Growth: g}
		}
	}
	p.frame, p.q = p.q, p.frame

	return p.growth, true, nil
}

// Shrink keeps only the leading n directions. After a collapsed
// renormalization the first n columns of the last Q factor are still
// orthonormal and span the surviving subspace; they become the frame and
// later steps advance only those.
func (p *Propagator) Shrink(n int) error {
	if n <= 0 || n > p.k {
		return dynamo.Invalidf("cannot shrink a %d-direction frame to %d", p.k, n)
	}
	if n == p.k {
		return nil
	}
	d := p.d
	frame := make([]float64, d*n)
	copy(frame, p.q[:d*n])

	p.k = n
	p.frame = frame
	p.next = make([]float64, d*n)
	p.q = make([]float64, d*n)
	p.rdiag = p.rdiag[:n]
	p.growth = p.growth[:n]
	p.qr = newHouseholder(d, n)
	return nil
}

// Frame returns a copy of the current frame as a d x k matrix.
func (p *Propagator) Frame() *dynamo.Matrix {
	return fromColumns(p.frame, p.d, p.k)
}

// Orthogonality returns max |(F^T F - I)_ij| for the current frame F.
func (p *Propagator) Orthogonality() float64 {
	return orthogonality(p.frame, p.d, p.k)
}

func orthogonality(cols []float64, d, k int) float64 {
	worst := 0.0
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			dot := 0.0
			for i := 0; i < d; i++ {
				dot += cols[a*d+i] * cols[b*d+i]
			}
			if a == b {
				dot -= 1
			}
			if dev := math.Abs(dot); dev > worst || math.IsNaN(dev) {
				worst = dev
			}
		}
	}
	return worst
}
