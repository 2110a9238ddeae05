package maps

import "github.com/san-kum/chaoslab/internal/dynamo"

// Linear implements X_{n+1} = A X_n for A = [[m11, m12], [m21, m22]].
// The default is the family [[-1, a], [-2, 1]] at a = 0.5.
type Linear struct{}

func NewLinear() *Linear                { return &Linear{} }
func (l *Linear) Name() string          { return "linear" }
func (l *Linear) Dim() int              { return 2 }
func (l *Linear) ParamNames() []string  { return []string{"m11", "m12", "m21", "m22"} }
func (l *Linear) DefaultParams() dynamo.Params {
	return dynamo.Params{-1, 0.5, -2, 1}
}

func (l *Linear) Apply(s dynamo.State, p dynamo.Params, out dynamo.State) {
	x, y := s[0], s[1]
	out[0] = p[0]*x + p[1]*y
	out[1] = p[2]*x + p[3]*y
}

func (l *Linear) Jacobian(_ dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, p[0])
	out.Set(0, 1, p[1])
	out.Set(1, 0, p[2])
	out.Set(1, 1, p[3])
}

// Matrix returns A for the given parameters.
func (l *Linear) Matrix(p dynamo.Params) *dynamo.Matrix {
	m := dynamo.NewMatrix(2, 2)
	l.Jacobian(nil, p, m)
	return m
}
