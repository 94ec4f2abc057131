// Package dashboard composes telemetry fetches, range validation and series
// shaping into the documents rendered by the device grid, the summary cards
// and the device detail charts.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/domain"
	"github.com/energy-monitor/energy-dashboard/internal/query"
	"github.com/energy-monitor/energy-dashboard/internal/series"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrLoadingData is the placeholder shown by a panel whose fetch failed.
const ErrLoadingData = "Error loading data"

const (
	locationKey     = "location"
	unknownLocation = "Unknown"
	metricInterval  = 1
)

// API is the subset of the telemetry client used by the dashboard.
type API interface {
	GetDevices(ctx context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error)
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	GetAttributes(ctx context.Context, q telemetry.AttributeQuery) ([]domain.Attribute, error)
	GetMetricValues(ctx context.Context, q telemetry.MetricQuery) ([]domain.Sample, error)
}

// Service builds dashboard views.
type Service struct {
	api    API
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new Service. Timestamps are displayed in loc.
func NewService(api API, loc *time.Location, logger zerolog.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("telemetry API is nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		api:    api,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Panel is one chart of the device detail page.
type Panel struct {
	Metric series.Metric       `json:"metric"`
	Points []series.ChartPoint `json:"points"`
	Error  string              `json:"error,omitempty"`
}

// ChartSet holds every panel of the device detail page.
type ChartSet struct {
	DeviceID string         `json:"deviceId"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Interval query.Interval `json:"interval"`
	Panels   []Panel        `json:"panels"`
}

// DeviceGrid lists one page of devices.
func (s *Service) DeviceGrid(ctx context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error) {
	page, err := s.api.GetDevices(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	out := *page
	if out.Items == nil {
		out.Items = []domain.Device{}
	}
	return &out, nil
}

// Device fetches one device.
func (s *Service) Device(ctx context.Context, id string) (*domain.Device, error) {
	device, err := s.api.GetDevice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

// Charts validates params and fetches every panel concurrently. A failing
// panel carries ErrLoadingData and never affects its siblings.
func (s *Service) Charts(ctx context.Context, deviceID string, params query.Params) (*ChartSet, error) {
	if err := query.Validate(params.Start, params.End, params.Interval); err != nil {
		return nil, err
	}
	start, end, err := params.Window(s.clock())
	if err != nil {
		return nil, err
	}

	set := &ChartSet{
		DeviceID: deviceID,
		Start:    start,
		End:      end,
		Interval: params.Interval,
		Panels:   make([]Panel, len(series.Metrics)),
	}
	var group errgroup.Group
	for i, m := range series.Metrics {
		group.Go(func() error {
			set.Panels[i] = s.panel(ctx, deviceID, m, params.Interval, start, end)
			return nil
		})
	}
	_ = group.Wait()
	return set, nil
}

// Chart validates params and fetches a single panel.
func (s *Service) Chart(ctx context.Context, deviceID string, m series.Metric, params query.Params) (*Panel, error) {
	if err := query.Validate(params.Start, params.End, params.Interval); err != nil {
		return nil, err
	}
	start, end, err := params.Window(s.clock())
	if err != nil {
		return nil, err
	}
	panel := s.panel(ctx, deviceID, m, params.Interval, start, end)
	return &panel, nil
}

func (s *Service) panel(ctx context.Context, deviceID string, m series.Metric, interval query.Interval, start, end time.Time) Panel {
	panel := Panel{Metric: m, Points: []series.ChartPoint{}}
	samples, err := s.fetch(ctx, deviceID, m, interval, start, end)
	if err != nil {
		panel.Error = ErrLoadingData
		return panel
	}
	panel.Points = slices.AppendSeq(panel.Points, series.Transform(samples, m, s.loc))
	return panel
}

func (s *Service) fetch(ctx context.Context, deviceID string, m series.Metric, interval query.Interval, start, end time.Time) ([]domain.Sample, error) {
	samples, err := s.api.GetMetricValues(ctx, telemetry.MetricQuery{
		DeviceID:     deviceID,
		Key:          m.Key,
		Start:        start,
		End:          end,
		Interval:     metricInterval,
		IntervalType: interval.APIType(),
		AggType:      telemetry.AggMax,
	})
	if err != nil {
		s.log(ctx).Error().Err(err).Str("deviceId", deviceID).Str("metric", m.Name).Msg("Failed to load metric values")
		return nil, err
	}
	return samples, nil
}

// clock returns the current time in the display location, truncated to the
// minute so that repeated realtime queries share a cache key.
func (s *Service) clock() time.Time {
	return s.now().In(s.loc).Truncate(time.Minute)
}

// log prefers the request-scoped logger carried by ctx.
func (s *Service) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
