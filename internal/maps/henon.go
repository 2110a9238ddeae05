package maps

import "github.com/san-kum/chaoslab/internal/dynamo"

// Henon implements (x, y) -> (1 - a x^2 + y, b x).
// The Jacobian determinant is -b everywhere, so the exponents of any bounded
// orbit sum to log|b|.
type Henon struct{}

func NewHenon() *Henon                        { return &Henon{} }
func (h *Henon) Name() string                 { return "henon" }
func (h *Henon) Dim() int                     { return 2 }
func (h *Henon) ParamNames() []string         { return []string{"a", "b"} }
func (h *Henon) DefaultParams() dynamo.Params { return dynamo.Params{1.4, 0.3} }

func (h *Henon) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = 1 - p[0]*x*x + y
	out[1] = p[1] * x
}

func (h *Henon) Jacobian(s dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, -2*p[0]*s[0])
	out.Set(0, 1, 1)
	out.Set(1, 0, p[1])
	out.Set(1, 1, 0)
}
