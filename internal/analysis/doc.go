// Package analysis provides chaos indicators for discrete-time maps.
//
// The package includes tools for characterizing iterated maps:
//
//   - [Estimator]: Lyapunov exponent or ordered spectrum via tangent-frame QR
//   - [Accumulator]: running log-growth sums for one orbit
//   - [LinearSpectrum]: exact exponents of a constant matrix (log |eigenvalue|)
//   - [Separation]: two-trajectory divergence, a Jacobian-free estimate
//   - [Attractor]: post-transient samples of one component, for bifurcation diagrams
//   - [PhasePortrait]: post-transient points of an orbit in a 2D projection
//   - [PowerSpectrum]: FFT power of an orbit component, with [DominantPeriod]
//   - [Classify], [ClassifyFixedPoint]: node, saddle, focus or center from
//     the trace and determinant of a planar Jacobian
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	est, _ := analysis.NewEstimator(analysis.DefaultConfig())
//	lambda, err := est.Estimate(ctx, maps.NewHenon(), dynamo.Params{1.4, 0.3}, dynamo.State{0.1, 0.1})
//	if err == nil && lambda[0] > 0 {
//	    // chaotic
//	}
//
// Divergent orbits are reported as [dynamo.ErrDiverged], never as a finite
// exponent.
package analysis
