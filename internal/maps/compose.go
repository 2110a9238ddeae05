package maps

import (
	"fmt"

	"github.com/san-kum/chaoslab/internal/dynamo"
)

type composed struct {
	base dynamo.Map
	n    int
}

// Compose returns the n-fold iterate f^n of m. The result is
// differentiable exactly when m is. n < 1 is treated as 1.
func Compose(m dynamo.Map, n int) dynamo.Map {
	if n < 1 {
		n = 1
	}
	c := &composed{base: m, n: n}
	if jac, ok := dynamo.JacobianOf(m); ok {
		return &composedDiff{composed: c, jac: jac}
	}
	return c
}

func (c *composed) Name() string                 { return fmt.Sprintf("%s^%d", c.base.Name(), c.n) }
func (c *composed) Dim() int                     { return c.base.Dim() }
func (c *composed) ParamNames() []string         { return c.base.ParamNames() }
func (c *composed) DefaultParams() dynamo.Params { return c.base.DefaultParams() }

func (c *composed) Apply(x dynamo.State, p dynamo.Params, out dynamo.State) {
	if len(out) > 0 && len(x) > 0 && &out[0] != &x[0] {
		copy(out, x)
	}
	for i := 0; i < c.n; i++ {
		c.base.Apply(out, p, out)
	}
}

type composedDiff struct {
	*composed
	jac dynamo.JacobianFunc
}

// Jacobian applies the chain rule: J_{f^n}(x) = J(x_{n-1}) ... J(x_1) J(x_0).
func (c *composedDiff) Jacobian(x dynamo.State, p dynamo.Params, out *dynamo.Matrix) {
	d := c.base.Dim()
	acc := dynamo.Identity(d)
	step := dynamo.NewMatrix(d, d)
	cur := x.Clone()

	for i := 0; i < c.n; i++ {
		c.jac(cur, p, step)
		acc = step.Mul(acc)
		c.base.Apply(cur, p, cur)
	}
	copy(out.Data, acc.Data)
}
