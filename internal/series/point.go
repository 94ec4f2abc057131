package series

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
)

// ChartPoint is one display-ready point of a chart series. It is encoded as
// {"timestamp": ..., "ts": ..., "<Label>": value}, the shape the chart panels
// bind their data keys to.
type ChartPoint struct {
	// Timestamp is formatted for the x axis.
	Timestamp string
	// Raw is the timestamp as delivered by the API.
	Raw   string
	Label string
	Value float64
	// Text, when set, replaces Value in the encoded point.
	Text string
}

func (p ChartPoint) fields() map[string]any {
	m := map[string]any{
		"timestamp": p.Timestamp,
		"ts":        p.Raw,
	}
	if p.Text != "" {
		m[p.Label] = p.Text
	} else {
		m[p.Label] = p.Value
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

// MarshalCBOR implements cbor.Marshaler.
func (p ChartPoint) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.fields())
}
