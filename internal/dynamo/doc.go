// Package dynamo provides the core primitives shared by the tumor
// growth inhibition simulator.
//
// The package defines the fundamental types for numerically integrating
// a dosed PK/PD system:
//
//   - [State]: vector representing compartment amounts, tumor diameter
//     and the time-on-treatment clock
//   - [System]: interface for ODE right-hand sides (dX/dt = f(t, X, active))
//   - [Integrator]: advances a [System] across one reporting window
//   - [Sample]: one reported point of a run
//   - [Metric], [Observer]: consumers of the sample stream
//
// # Example
//
//	model, _ := pkpd.NewTGI(pkpd.DefaultParams())
//	schedule, _ := dosing.NewFixedInterval(20, 2, 252)
//	s := sim.New(model, schedule, integrators.NewRK45())
//	result, _ := s.Run(ctx, sim.DefaultConfig())
//
// # Errors
//
// Every failure is reported as one of two kinds: [ErrInvalidParameter]
// for rejected configuration, and [ErrIntegrationFailure] for a solver
// that could not advance a window. Use errors.Is to test for the kind.
package dynamo
