package maps

import (
	"math"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

// Torus implements v -> A_a v mod 1 with A_a = [[1, a], [1, 1+a]].
// At a = 1 this is Arnold's cat map. The reduction mod 1 has unit derivative
// almost everywhere, so the Jacobian is A_a itself.
type Torus struct{}

func NewTorus() *Torus                        { return &Torus{} }
func (t *Torus) Name() string                 { return "torus" }
func (t *Torus) Dim() int                     { return 2 }
func (t *Torus) ParamNames() []string         { return []string{"a"} }
func (t *Torus) DefaultParams() dynamo.Params { return dynamo.Params{1.0} }

func (t *Torus) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	a := p[0]
	x, y := s[0], s[1]
	out[0] = wrapUnit(x + a*y)
	out[1] = wrapUnit(x + (1+a)*y)
}

func (t *Torus) Jacobian(_ dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	a := p[0]
	out.Set(0, 0, 1)
	out.Set(0, 1, a)
	out.Set(1, 0, 1)
	out.Set(1, 1, 1+a)
}

// Matrix returns A_a.
func (t *Torus) Matrix(p dynamo.Params) *dynamo.Matrix {
	m := dynamo.NewMatrix(2, 2)
	t.Jacobian(nil, p, m)
	return m
}

// wrapUnit reduces v into [0, 1).
func wrapUnit(v float64) float64 {
	w := v - math.Floor(v)
	if w >= 1 {
		return 0
	}
	return w
}
