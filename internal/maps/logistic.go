package maps

import "github.com/san-kum/chaoslab/internal/dynamo"

// Logistic implements x_{n+1} = r x_n (1 - x_n).
type Logistic struct{}

func NewLogistic() *Logistic                     { return &Logistic{} }
func (l *Logistic) Name() string                 { return "logistic" }
func (l *Logistic) Dim() int                     { return 1 }
func (l *Logistic) ParamNames() []string         { return []string{"r"} }
func (l *Logistic) DefaultParams() dynamo.Params { return dynamo.Params{4.0} }

func (l *Logistic) Apply(x dynamo.State, p dynamo.Params, out dynamo.State) {
	out[0] = p[0] * x[0] * (1 - x[0])
}

func (l *Logistic) Jacobian(x dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	out.Set(0, 0, p[0]*(1-2*x[0]))
}
