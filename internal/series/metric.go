// Package series turns raw telemetry samples into chart-ready points.
package series

// Metric describes one chart panel and the telemetry key it is drawn from.
type Metric struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
	Chart string `json:"chart"`
	// Delta marks cumulative counters charted as the difference between
	// consecutive samples.
	Delta bool `json:"delta"`
}

var (
	Voltage = Metric{Name: "voltage", Key: "Voltage", Label: "Voltage", Unit: "V", Chart: "line"}
	Current = Metric{Name: "current", Key: "Current", Label: "Current", Unit: "A", Chart: "area"}
	Power   = Metric{Name: "power", Key: "Power", Label: "Power", Unit: "kW", Chart: "line"}
	Energy  = Metric{Name: "energy", Key: "Total kWh", Label: "Energy", Unit: "kWh", Chart: "bar", Delta: true}
)

// Metrics lists the device detail panels in display order.
var Metrics = []Metric{Voltage, Current, Power, Energy}

// LookupMetric finds a metric by its name.
func LookupMetric(name string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}
