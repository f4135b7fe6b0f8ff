// Package physics provides the triple pendulum model.
//
// [TriplePendulum] implements [dynamo.System]. Link 1 hangs from a fixed
// pivot and links 2 and 3 both hang from its tip, so every joint angle after
// the first is measured relative to link 1. The three point masses sit at the
// link tips.
//
// The accelerations share one denominator,
//
//	D = l1 (m1 + m2 sin²θ2 + m3 sin²θ3)
//
// which is the mass matrix determinant up to a positive factor. D stays
// positive whenever the masses and l1 are positive; [Constants.Validate]
// rejects anything else before integration.
//
// [TriplePendulum] also implements [dynamo.Configurable] for live tuning:
//
//	p := physics.NewTriplePendulum(physics.DefaultConstants())
//	_ = p.SetParam("g", 3.7)
package physics
