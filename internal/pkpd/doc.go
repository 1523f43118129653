// Package pkpd implements the tumor growth inhibition model: two-compartment
// oral pharmacokinetics driving a log-kill tumor-diameter equation whose drug
// efficacy decays with cumulative time on treatment.
//
// [TGI] implements [dynamo.System] over the five-element state
//
//	[gut, central, peripheral, diameter, clock]
//
// and [dynamo.Configurable] so sweeps can vary any rate constant by name.
package pkpd
