// Package metrics summarises a run's sample stream. Every type implements
// dynamo.Metric and is reset by the simulator at the start of each run.
package metrics

import "github.com/san-kum/tgisim/internal/dynamo"

// Default returns a fresh instance of every standard metric.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewPeakExposure(),
		NewExposureAUC(),
		NewTimeAboveThreshold(DefaultToxicThreshold),
		NewNadir(),
		NewTimeToNadir(),
		NewFinalDiameter(),
		NewRelativeChange(),
		NewTimeOnTreatment(),
	}
}

// Names lists the metric names produced by Default, in order.
func Names() []string {
	ms := Default()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}
