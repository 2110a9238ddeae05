// Package dynamo provides the core primitives for discrete-time dynamical
// systems.
//
// The package defines the fundamental types shared by the orbit, tangent,
// analysis and sweep packages:
//
//   - [State]: vector representing the dynamical variable x_n
//   - [Params]: positional parameter vector, immutable during an orbit
//   - [Map]: iteration function x_{n+1} = F(x_n, p)
//   - [Differentiable]: a [Map] with a closed-form Jacobian
//   - [Spec]: closure-backed [Map] for caller-supplied systems
//   - [Matrix]: small dense matrix used for Jacobians
//
// # Example
//
//	m := maps.NewHenon()
//	x := dynamo.State{0.1, 0.1}
//	m.Apply(x, m.DefaultParams(), x)
//
// # Thread Safety
//
// Maps are immutable after construction and may be shared by any number of
// goroutines. State, Matrix and Params values are not synchronized; each orbit
// owns its own copies.
package dynamo
