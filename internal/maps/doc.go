// Package maps provides discrete-time map models for orbit and Lyapunov
// analysis.
//
// Each model implements [dynamo.Differentiable], pairing the iteration
// function with its closed-form Jacobian:
//
//   - [Logistic]: x -> r x (1 - x)
//   - [Henon]: (x, y) -> (1 - a x^2 + y, b x)
//   - [Torus]: v -> A_a v mod 1, Arnold's cat map at a = 1
//   - [Linear]: v -> A v for a general 2x2 matrix
//
// Normal forms of the codimension-one fixed-point bifurcations, each in the
// plane: [Flip], [Pitchfork], [Transcritical], [SaddleNode] and [Hopf]
// (Neimark-Sacker).
//
// [Compose] builds the n-fold iterate f^n of any map, with the chain-rule
// Jacobian when the base map has one.
//
// Parameters are positional; ParamNames gives their order:
//
//	h := maps.NewHenon()
//	p := h.DefaultParams()            // [1.4 0.3]
//	p = p.With(dynamo.ParamIndex(h, "a"), 1.2)
package maps
