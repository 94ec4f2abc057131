// Package domain holds the records shared by the telemetry client, the series
// transformer and the dashboard views.
package domain

import "encoding/json"

// Device is a power meter registered with the telemetry API.
type Device struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Location string   `json:"location,omitempty"`
	Tags     []string `json:"tags"`
}

// DevicePage is one page of the device listing.
type DevicePage struct {
	Items    []Device `json:"items"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int      `json:"total"`
}

// Attribute is the latest value of a device attribute such as its location.
type Attribute struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Timestamp string          `json:"ts,omitempty"`
}

// String returns the attribute value as text. JSON strings are unquoted,
// any other JSON value is returned verbatim.
func (a Attribute) String() string {
	if len(a.Value) == 0 || string(a.Value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.Value, &s); err == nil {
		return s
	}
	return string(a.Value)
}
