package domain

// Sample is one timestamped telemetry reading. The API delivers samples
// newest first.
type Sample struct {
	Timestamp string  `json:"ts"`
	Value     float64 `json:"value"`
}
