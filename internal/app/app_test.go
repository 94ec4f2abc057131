package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/config"
	"github.com/energy-monitor/energy-dashboard/internal/dashboard"
	"github.com/energy-monitor/energy-dashboard/internal/domain"
	"github.com/energy-monitor/energy-dashboard/internal/metrics"
	"github.com/fxamacker/cbor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	deviceQuery telemetry.DeviceQuery
	failDevices bool
	failKeys    map[string]bool
}

func (f *fakeAPI) GetDevices(_ context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error) {
	f.mu.Lock()
	f.deviceQuery = q
	f.mu.Unlock()
	if f.failDevices {
		return nil, &telemetry.FetchError{Op: "devices", Err: errors.New("connection refused")}
	}
	return &domain.DevicePage{
		Items:    []domain.Device{{ID: "d1", Name: "Main meter", Type: "meter", Tags: []string{"1 Phase"}}},
		Page:     q.Page,
		PageSize: q.PageSize,
		Total:    1,
	}, nil
}

func (f *fakeAPI) GetDevice(_ context.Context, id string) (*domain.Device, error) {
	return &domain.Device{ID: id, Name: "Main meter"}, nil
}

func (f *fakeAPI) GetAttributes(context.Context, telemetry.AttributeQuery) ([]domain.Attribute, error) {
	return []domain.Attribute{{Key: "location", Value: json.RawMessage(`"Plant 2"`)}}, nil
}

func (f *fakeAPI) GetMetricValues(_ context.Context, q telemetry.MetricQuery) ([]domain.Sample, error) {
	if f.failKeys[q.Key] {
		return nil, &telemetry.FetchError{Op: "metric " + q.Key, Err: errors.New("timeout")}
	}
	return []domain.Sample{
		{Timestamp: "2024-01-02T00:00:00Z", Value: 12},
		{Timestamp: "2024-01-01T00:00:00Z", Value: 10},
	}, nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		PollInterval:    time.Second,
		DeviceTags:      []string{"1 Phase"},
		DevicePageSize:  10,
		DisplayTimezone: "UTC",
	}
}

func newTestApp(ctx context.Context, t *testing.T, api dashboard.API) *fiber.App {
	t.Helper()
	logger := zerolog.Nop()
	service, err := dashboard.NewService(api, time.UTC, logger)
	require.NoError(t, err)
	ctrl, err := NewController(ctx, service, testSettings(), &logger)
	require.NoError(t, err)
	return createApp(&logger, ctrl)
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Server is up and running")
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestGetDevices(t *testing.T) {
	api := &fakeAPI{}
	app := newTestApp(context.Background(), t, api)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tags=1+Phase&page=1&page_size=10", api.deviceQuery.Encode())

	var page domain.DevicePage
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "d1", page.Items[0].ID)

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices?tags=3+Phase,Meter&page=2&page_size=5", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"3 Phase", "Meter"}, api.deviceQuery.Tags)
	assert.Equal(t, 2, api.deviceQuery.Page)
	assert.Equal(t, 5, api.deviceQuery.PageSize)

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices?page=0", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDevicesUpstreamFailure(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{failDevices: true})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var errResp codeResp
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, dashboard.ErrLoadingData, errResp.Message)
	assert.Equal(t, http.StatusBadGateway, errResp.Code)
}

func TestGetDevice(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/abc", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"abc","name":"Main meter","type":"","tags":null}`, string(body))
}

func TestGetChartsValidation(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"inverted range", "/api/devices/d1/charts?start=2024-01-05&end=2024-01-01&interval=DAY", "inverted range"},
		{"hour range too wide", "/api/devices/d1/charts?start=2024-01-01&end=2024-01-10&interval=HOUR", "range too wide for interval"},
		{"missing dates", "/api/devices/d1/charts?interval=week", "missing dates"},
		{"bad date", "/api/devices/d1/charts?start=yesterday&interval=DAY", `invalid start date "yesterday"`},
		{"bad interval", "/api/devices/d1/charts?interval=YEAR", `unknown interval "YEAR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp codeResp
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.message, errResp.Message)
		})
	}
}

type chartSetResp struct {
	DeviceID string `json:"deviceId"`
	Interval string `json:"interval"`
	Panels   []struct {
		Metric struct {
			Name string `json:"name"`
		} `json:"metric"`
		Points []map[string]any `json:"points"`
		Error  string           `json:"error"`
	} `json:"panels"`
}

func TestGetCharts(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{failKeys: map[string]bool{"Power": true}})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/charts?start=2024-01-01&end=2024-01-02&interval=hour", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var set chartSetResp
	require.NoError(t, json.Unmarshal(body, &set))
	assert.Equal(t, "d1", set.DeviceID)
	assert.Equal(t, "HOUR", set.Interval)
	require.Len(t, set.Panels, 4)

	assert.Equal(t, "voltage", set.Panels[0].Metric.Name)
	require.Len(t, set.Panels[0].Points, 2)
	assert.Equal(t, "01/01, 12:00 AM", set.Panels[0].Points[0]["timestamp"])
	assert.InDelta(t, 10.0, set.Panels[0].Points[0]["Voltage"], 1e-9)

	assert.Equal(t, dashboard.ErrLoadingData, set.Panels[2].Error)
	assert.Empty(t, set.Panels[2].Points)

	require.Len(t, set.Panels[3].Points, 2)
	assert.Equal(t, "2.00", set.Panels[3].Points[0]["Energy"])
	assert.Equal(t, "0.00", set.Panels[3].Points[1]["Energy"])
}

func TestGetChartsCBOR(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/devices/d1/charts", nil)
	req.Header.Set(fiber.HeaderAccept, mimeCBOR)
	resp, body := doRequest(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, mimeCBOR, resp.Header.Get(fiber.HeaderContentType))

	var set map[string]any
	require.NoError(t, cbor.Unmarshal(body, &set))
	assert.Equal(t, "d1", set["deviceId"])
	assert.Equal(t, "REALTIME", set["interval"])
}

func TestGetChart(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/charts/energy", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"Energy":"2.00"`)

	resp, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/charts/frequency", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSummary(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{failKeys: map[string]bool{"Current": true}})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/summary", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary dashboard.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, "Plant 2", summary.Location)
	require.Len(t, summary.Readings, 3)
	assert.Equal(t, "12.00 V", summary.Readings[0].Display)
	assert.Equal(t, dashboard.ErrLoadingData, summary.Readings[1].Error)
	assert.Equal(t, "2.00 kWh", summary.Consumption.Display)
}

func TestStreamSummary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	app := newTestApp(ctx, t, &fakeAPI{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/summary/stream?every=1m", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	stream := string(body)
	assert.True(t, strings.HasPrefix(stream, ": keepalive\n\nid: 1\nevent: summary\ndata: {"), stream)
	assert.Contains(t, stream, `"location":"Plant 2"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

type countingViews struct {
	Views
	summaries int
}

func (v *countingViews) Summary(_ context.Context, deviceID string) (*dashboard.Summary, error) {
	v.summaries++
	return &dashboard.Summary{DeviceID: deviceID}, nil
}

func TestStreamStopsWithoutFetchWhenClientGone(t *testing.T) {
	logger := zerolog.Nop()
	views := &countingViews{}
	ctrl, err := NewController(context.Background(), views, testSettings(), &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := bufio.NewWriter(failingWriter{})
	poller := ctrl.poller.WithSource(&liveStream{source: views, w: w, cancel: cancel})

	done := make(chan error, 1)
	go func() {
		done <- poller.Run(ctx, "d1", time.Second, func(*dashboard.Summary) error {
			t.Error("nothing is emitted to a closed connection")
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
	assert.Zero(t, views.summaries)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestLiveStreamWritesKeepalive(t *testing.T) {
	var buf bytes.Buffer
	views := &countingViews{}
	stream := &liveStream{source: views, w: bufio.NewWriter(&buf), cancel: func() {}}

	sum, err := stream.Summary(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", sum.DeviceID)
	assert.Equal(t, ": keepalive\n\n", buf.String())
	assert.Equal(t, 1, views.summaries)
}

func TestStreamSummaryRejectsCadence(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	for _, every := range []string{"10m", "100ms", "soon"} {
		resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/devices/d1/summary/stream?every="+every, nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, every)
	}
}

func TestPostSettings(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	post := func(payload string) SettingsResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewBufferString(payload))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, body := doRequest(t, app, req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out SettingsResponse
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}

	current := `{"start":"2024-01-01","end":"2024-01-31","interval":"DAY","pollInterval":"30s"}`

	out := post(`{"current":` + current + `,"candidate":{"start":"2024-01-01","end":"2024-01-02","interval":"HOUR"}}`)
	assert.Empty(t, out.Error)
	assert.Equal(t, SettingsForm{
		Start:        "2024-01-01T00:00:00Z",
		End:          "2024-01-02T00:00:00Z",
		Interval:     "HOUR",
		PollInterval: "30s",
	}, out.Active)

	out = post(`{"current":` + current + `,"candidate":{"start":"2024-01-01","end":"2024-01-10","interval":"HOUR"}}`)
	assert.Equal(t, "range too wide for interval", out.Error)
	assert.Equal(t, "DAY", out.Active.Interval)
	assert.Equal(t, "2024-01-31T00:00:00Z", out.Active.End)

	out = post(`{"current":` + current + `,"candidate":{"interval":"DAY","pollInterval":"10m"}}`)
	assert.Equal(t, "missing dates", out.Error)
	assert.Equal(t, "30s", out.Active.PollInterval)

	out = post(`{"current":` + current + `,"candidate":{"interval":"REALTIME","pollInterval":"1m0s"}}`)
	assert.Empty(t, out.Error)
	assert.Equal(t, SettingsForm{Interval: "REALTIME", PollInterval: "1m0s"}, out.Active)

	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewBufferString("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, _ := doRequest(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSettings(t *testing.T) {
	app := newTestApp(context.Background(), t, &fakeAPI{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var opts SettingsOptions
	require.NoError(t, json.Unmarshal(body, &opts))
	assert.Len(t, opts.Intervals, 5)
	assert.Equal(t, []string{"5s", "10s", "30s", "1m0s", "2m0s", "5m0s"}, opts.PollIntervals)
	assert.Equal(t, "REALTIME", opts.Defaults.Interval)
	assert.Equal(t, "1s", opts.Defaults.PollInterval)
	assert.True(t, strings.HasSuffix(opts.Defaults.Start, "-01T00:00:00Z"), opts.Defaults.Start)
}

func TestMonitoringServer(t *testing.T) {
	logger := zerolog.Nop()
	m := metrics.New(prometheus.NewRegistry())
	m.CacheLookup(true)
	monApp := CreateMonitoringServer(&logger, m)

	resp, body := doRequest(t, monApp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `dashboard_cache_lookups_total{result="hit"} 1`)
}
