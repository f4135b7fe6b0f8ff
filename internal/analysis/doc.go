// Package analysis characterizes recorded or simulated pendulum motion.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum], [DominantFrequency]: spectra of one state component
//   - [PhasePortrait], [PoincareSectionFromResult]: 2D views of phase space
//   - [BifurcationDiagram]: Poincaré values of ω1 across a parameter sweep
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(ctx, c, x0, cfg, 2000, 1e-8)
//	if err == nil && lambda > 0 {
//	    // nearby starts separate exponentially
//	}
package analysis
