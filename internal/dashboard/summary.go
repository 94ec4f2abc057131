package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/query"
	"github.com/energy-monitor/energy-dashboard/internal/series"
	"golang.org/x/sync/errgroup"
)

// emptyReading is displayed when a reading is unavailable.
const emptyReading = "-"

// Reading is one line of a device summary card.
type Reading struct {
	Metric  string   `json:"metric"`
	Label   string   `json:"label"`
	Unit    string   `json:"unit"`
	Value   *float64 `json:"value,omitempty"`
	Display string   `json:"display"`
	Error   string   `json:"error,omitempty"`
}

// Summary is the device card of the dashboard grid.
type Summary struct {
	DeviceID    string    `json:"deviceId"`
	Location    string    `json:"location"`
	Readings    []Reading `json:"readings"`
	Consumption Reading   `json:"consumption"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// summaryReadings are the latest-value lines of a card, fetched per minute.
var summaryReadings = []series.Metric{series.Voltage, series.Current, series.Power}

// Summary fetches the card of one device: its location, the latest voltage,
// current and power, and the energy consumed since the start of the month.
// Every line fails independently.
func (s *Service) Summary(ctx context.Context, deviceID string) (*Summary, error) {
	now := s.clock()
	start := query.StartOfMonth(now)

	sum := &Summary{
		DeviceID:  deviceID,
		Location:  unknownLocation,
		Readings:  make([]Reading, len(summaryReadings)),
		UpdatedAt: now,
	}

	var group errgroup.Group
	group.Go(func() error {
		sum.Location = s.location(ctx, deviceID)
		return nil
	})
	for i, m := range summaryReadings {
		group.Go(func() error {
			sum.Readings[i] = s.latestReading(ctx, deviceID, m, start, now)
			return nil
		})
	}
	group.Go(func() error {
		sum.Consumption = s.consumption(ctx, deviceID, start, now)
		return nil
	})
	_ = group.Wait()
	return sum, nil
}

func (s *Service) location(ctx context.Context, deviceID string) string {
	attrs, err := s.api.GetAttributes(ctx, telemetry.AttributeQuery{DeviceID: deviceID, Keys: []string{locationKey}})
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("deviceId", deviceID).Msg("Failed to load device location")
		return unknownLocation
	}
	for _, attr := range attrs {
		if v := attr.String(); v != "" && (attr.Key == locationKey || attr.Key == "") {
			return v
		}
	}
	return unknownLocation
}

func (s *Service) latestReading(ctx context.Context, deviceID string, m series.Metric, start, end time.Time) Reading {
	reading := newReading(m)
	samples, err := s.fetch(ctx, deviceID, m, query.Realtime, start, end)
	if err != nil {
		reading.Error = ErrLoadingData
		return reading
	}
	if latest, ok := series.Latest(samples); ok {
		reading.set(latest.Value)
	}
	return reading
}

func (s *Service) consumption(ctx context.Context, deviceID string, start, end time.Time) Reading {
	reading := newReading(series.Energy)
	samples, err := s.fetch(ctx, deviceID, series.Energy, query.Day, start, end)
	if err != nil {
		reading.Error = ErrLoadingData
		return reading
	}
	if len(samples) > 0 {
		reading.set(series.SimpleConsumption(samples))
	}
	return reading
}

func newReading(m series.Metric) Reading {
	return Reading{Metric: m.Name, Label: m.Label, Unit: m.Unit, Display: emptyReading}
}

func (r *Reading) set(v float64) {
	r.Value = &v
	r.Display = strconv.FormatFloat(v, 'f', 2, 64) + " " + r.Unit
}
