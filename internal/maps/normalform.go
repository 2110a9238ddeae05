package maps

import (
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// The normal forms below unfold one codimension-one bifurcation of a fixed
// point each. The diagonal ones pair the bifurcating x direction with a
// contracting y -> y/2 so the plane portraits stay two-dimensional.

// Flip implements (x, y) -> (-(1+mu) x + x^3, y/2). The origin loses
// stability through an eigenvalue -1 at mu = 0 and the period-2 orbit
// x = ±sqrt(mu) appears.
type Flip struct{}

func NewFlip() *Flip                         { return &Flip{} }
func (f *Flip) Name() string                 { return "flip" }
func (f *Flip) Dim() int                     { return 2 }
func (f *Flip) ParamNames() []string         { return []string{"mu"} }
func (f *Flip) DefaultParams() dynamo.Params { return dynamo.Params{0.2} }

func (f *Flip) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = -(1+p[0])*x + x*x*x
	out[1] = 0.5 * y
}

func (f *Flip) Jacobian(s dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, -(1+p[0])+3*s[0]*s[0])
	out.Set(0, 1, 0)
	out.Set(1, 0, 0)
	out.Set(1, 1, 0.5)
}

// Pitchfork implements (x, y) -> (r x - x^3, y/2). Past r = 1 the origin
// splits into the symmetric pair x = ±sqrt(r-1).
type Pitchfork struct{}

func NewPitchfork() *Pitchfork                     { return &Pitchfork{} }
func (pf *Pitchfork) Name() string                 { return "pitchfork" }
func (pf *Pitchfork) Dim() int                     { return 2 }
func (pf *Pitchfork) ParamNames() []string         { return []string{"r"} }
func (pf *Pitchfork) DefaultParams() dynamo.Params { return dynamo.Params{1.5} }

func (pf *Pitchfork) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = p[0]*x - x*x*x
	out[1] = 0.5 * y
}

func (pf *Pitchfork) Jacobian(s dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, p[0]-3*s[0]*s[0])
	out.Set(0, 1, 0)
	out.Set(1, 0, 0)
	out.Set(1, 1, 0.5)
}

// Transcritical implements (x, y) -> (mu x - x^2, y/2). The fixed points 0
// and mu-1 exchange stability at mu = 1.
type Transcritical struct{}

func NewTranscritical() *Transcritical                { return &Transcritical{} }
func (t *Transcritical) Name() string                 { return "transcritical" }
func (t *Transcritical) Dim() int                     { return 2 }
func (t *Transcritical) ParamNames() []string         { return []string{"mu"} }
func (t *Transcritical) DefaultParams() dynamo.Params { return dynamo.Params{1.5} }

func (t *Transcritical) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = p[0]*x - x*x
	out[1] = 0.5 * y
}

func (t *Transcritical) Jacobian(s dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, p[0]-2*s[0])
	out.Set(0, 1, 0)
	out.Set(1, 0, 0)
	out.Set(1, 1, 0.5)
}

// SaddleNode implements (x, y) -> (x - x^2 - y + mu, x/2). Fixed points
// x = (-1/2 ± sqrt(1/4 + 4 mu)) / 2 exist for mu > -1/16 and merge there.
type SaddleNode struct{}

func NewSaddleNode() *SaddleNode                    { return &SaddleNode{} }
func (sn *SaddleNode) Name() string                 { return "saddle-node" }
func (sn *SaddleNode) Dim() int                     { return 2 }
func (sn *SaddleNode) ParamNames() []string         { return []string{"mu"} }
func (sn *SaddleNode) DefaultParams() dynamo.Params { return dynamo.Params{-0.04} }

func (sn *SaddleNode) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = x - x*x - y + p[0]
	out[1] = 0.5 * x
}

func (sn *SaddleNode) Jacobian(s dynamo.State, _ dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, 1-2*s[0])
	out.Set(0, 1, -1)
	out.Set(1, 0, 0.5)
	out.Set(1, 1, 0)
}

// FixedPoints returns the two fixed points, or none below mu = -1/16.
func (sn *SaddleNode) FixedPoints(p dynamo.Params) []dynamo.State {
	disc := 0.25 + 4*p[0]
	if disc < 0 {
		return nil
	}
	r := math.Sqrt(disc)
	lo, hi := (-0.5-r)/2, (-0.5+r)/2
	return []dynamo.State{{hi, hi / 2}, {lo, lo / 2}}
}

// Hopf implements v -> (1 + mu - |v|^2) R_beta v, a rotation by beta with
// radial damping. At mu = 0 the complex pair crosses the unit circle and an
// invariant circle of radius sqrt(mu) appears (Neimark-Sacker).
type Hopf struct{}

func NewHopf() *Hopf                         { return &Hopf{} }
func (h *Hopf) Name() string                 { return "hopf" }
func (h *Hopf) Dim() int                     { return 2 }
func (h *Hopf) ParamNames() []string         { return []string{"mu", "beta"} }
func (h *Hopf) DefaultParams() dynamo.Params { return dynamo.Params{0.1, math.Pi / 4} }

func (h *Hopf) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	c, sn := math.Cos(p[1]), math.Sin(p[1])
	k := 1 + p[0] - (x*x + y*y)
	out[0] = k * (c*x - sn*y)
	out[1] = k * (sn*x + c*y)
}

// Jacobian is k R - 2 (R v) v^T.
func (h *Hopf) Jacobian(s dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	x, y := s[0], s[1]
	c, sn := math.Cos(p[1]), math.Sin(p[1])
	k := 1 + p[0] - (x*x + y*y)
	ux, uy := c*x-sn*y, sn*x+c*y

	out.Set(0, 0, k*c-2*ux*x)
	out.Set(0, 1, -k*sn-2*ux*y)
	out.Set(1, 0, k*sn-2*uy*x)
	out.Set(1, 1, k*c-2*uy*y)
}
