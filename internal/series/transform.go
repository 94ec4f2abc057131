package series

import (
	"iter"
	"slices"
	"strconv"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/domain"
)

// DisplayLayout renders two-digit month, day, hour and minute on a 12-hour clock.
const DisplayLayout = "01/02, 03:04 PM"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTimestamp renders an ISO-8601 timestamp with DisplayLayout in loc.
// Timestamps without a zone are read in loc. Input that cannot be parsed is
// returned unchanged.
func FormatTimestamp(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc).Format(DisplayLayout)
		}
	}
	return raw
}

// Transform converts newest-first samples into an oldest-first series for m.
// Delta metrics carry the difference to the previous (newer) sample, computed
// on the input order, formatted with two decimals. The returned sequence is
// lazy and can be ranged over any number of times with identical results.
func Transform(samples []domain.Sample, m Metric, loc *time.Location) iter.Seq[ChartPoint] {
	samples = slices.Clone(samples)
	return func(yield func(ChartPoint) bool) {
		for i := len(samples) - 1; i >= 0; i-- {
			p := ChartPoint{
				Timestamp: FormatTimestamp(samples[i].Timestamp, loc),
				Raw:       samples[i].Timestamp,
				Label:     m.Label,
				Value:     samples[i].Value,
			}
			if m.Delta {
				p.Value = delta(samples, i)
				p.Text = strconv.FormatFloat(p.Value, 'f', 2, 64)
			}
			if !yield(p) {
				return
			}
		}
	}
}

// EnergyDeltas returns, for each sample of a newest-first cumulative series,
// the previous sample's value minus its own. The first entry is 0.
// Counter resets are not detected and show up as negative deltas.
func EnergyDeltas(samples []domain.Sample) []float64 {
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = delta(samples, i)
	}
	return out
}

func delta(samples []domain.Sample, i int) float64 {
	if i == 0 {
		return 0
	}
	return samples[i-1].Value - samples[i].Value
}

// Latest returns the newest sample.
func Latest(samples []domain.Sample) (domain.Sample, bool) {
	if len(samples) == 0 {
		return domain.Sample{}, false
	}
	return samples[0], true
}

// SimpleConsumption is the newest cumulative reading minus the oldest one,
// or 0 for an empty series.
func SimpleConsumption(samples []domain.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[0].Value - samples[len(samples)-1].Value
}
