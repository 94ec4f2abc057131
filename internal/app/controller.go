package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/config"
	"github.com/energy-monitor/energy-dashboard/internal/dashboard"
	"github.com/energy-monitor/energy-dashboard/internal/domain"
	"github.com/energy-monitor/energy-dashboard/internal/query"
	"github.com/energy-monitor/energy-dashboard/internal/series"
	"github.com/fxamacker/cbor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	mimeJSON = "application/json"
	mimeCBOR = "application/cbor"
)

// dateLayouts are the accepted forms of the start and end query parameters.
// Zone-less forms are read in the display location.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// Views is the dashboard surface served by the controller.
type Views interface {
	DeviceGrid(ctx context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error)
	Device(ctx context.Context, id string) (*domain.Device, error)
	Summary(ctx context.Context, deviceID string) (*dashboard.Summary, error)
	Charts(ctx context.Context, deviceID string, params query.Params) (*dashboard.ChartSet, error)
	Chart(ctx context.Context, deviceID string, m series.Metric, params query.Params) (*dashboard.Panel, error)
}

type Controller struct {
	views        Views
	poller       *dashboard.Poller
	baseCtx      context.Context
	logger       *zerolog.Logger
	loc          *time.Location
	deviceTags   []string
	pageSize     int
	pollInterval time.Duration
}

// NewController creates a Controller. Summary streams end when ctx is done.
func NewController(ctx context.Context, views Views, settings *config.Settings, logger *zerolog.Logger) (*Controller, error) {
	if views == nil {
		return nil, errors.New("dashboard views are nil")
	}
	poller, err := dashboard.NewPoller(views, settings.PollInterval, logger.With().Str("component", "poller").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create poller: %w", err)
	}
	return &Controller{
		views:        views,
		poller:       poller,
		baseCtx:      ctx,
		logger:       logger,
		loc:          settings.Location(),
		deviceTags:   settings.DeviceTags,
		pageSize:     settings.DevicePageSize,
		pollInterval: settings.PollInterval,
	}, nil
}

// GetDevices godoc
// @Summary List devices
// @Description List one page of devices matching the given tags
// @Tags devices
// @Accept json
// @Produce json
// @Param tags query string false "Comma separated device tags"
// @Param page query int false "Page number, starting at 1"
// @Param page_size query int false "Page size"
// @Success 200 {object} domain.DevicePage
// @Failure 400 {object} codeResp
// @Failure 502 {object} codeResp
// @Router /api/devices [get]
func (c *Controller) GetDevices(ctx *fiber.Ctx) error {
	q := telemetry.DeviceQuery{
		Tags:     c.deviceTags,
		Page:     ctx.QueryInt("page", 1),
		PageSize: ctx.QueryInt("page_size", c.pageSize),
	}
	if tags := ctx.Query("tags"); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	if q.Page < 1 || q.PageSize < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid page")
	}

	page, err := c.views.DeviceGrid(ctx.UserContext(), q)
	if err != nil {
		return c.failure(ctx, err, "Failed to list devices")
	}
	return respond(ctx, page)
}

// GetDevice godoc
// @Summary Get device
// @Description Get a single device by id
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} domain.Device
// @Failure 502 {object} codeResp
// @Router /api/devices/{id} [get]
func (c *Controller) GetDevice(ctx *fiber.Ctx) error {
	device, err := c.views.Device(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return c.failure(ctx, err, "Failed to get device")
	}
	return respond(ctx, device)
}

// GetSummary godoc
// @Summary Get device summary
// @Description Location, latest voltage, current and power, and month to date consumption of a device
// @Tags devices
// @Accept json
// @Produce json,application/cbor
// @Param id path string true "Device ID"
// @Success 200 {object} dashboard.Summary
// @Failure 500 {object} codeResp
// @Router /api/devices/{id}/summary [get]
func (c *Controller) GetSummary(ctx *fiber.Ctx) error {
	summary, err := c.views.Summary(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return c.failure(ctx, err, "Failed to get device summary")
	}
	return respond(ctx, summary)
}

// StreamSummary godoc
// @Summary Stream device summary
// @Description Server-sent events carrying the device summary, refreshed on a fixed cadence
// @Tags devices
// @Produce text/event-stream
// @Param id path string true "Device ID"
// @Param every query string false "Refresh cadence, e.g. 30s"
// @Success 200 {object} dashboard.Summary
// @Failure 400 {object} codeResp
// @Router /api/devices/{id}/summary/stream [get]
func (c *Controller) StreamSummary(ctx *fiber.Ctx) error {
	every := c.pollInterval
	if raw := ctx.Query("every"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid poll interval")
		}
		every = d
	}
	if err := query.ValidatePollInterval(every); err != nil {
		return c.failure(ctx, err, "Invalid poll interval")
	}

	// fiber recycles ctx once the handler returns
	deviceID := strings.Clone(ctx.Params("id"))
	logger := c.logger.With().Str("deviceId", deviceID).Logger()
	streamCtx := logger.WithContext(c.baseCtx)

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// fasthttp reports a closed connection only through a failed write,
		// so every poll is preceded by a keepalive comment.
		streamCtx, cancel := context.WithCancel(streamCtx)
		defer cancel()
		poller := c.poller.WithSource(&liveStream{source: c.views, w: w, cancel: cancel})

		var seq int
		err := poller.Run(streamCtx, deviceID, every, func(summary *dashboard.Summary) error {
			seq++
			return writeEvent(w, seq, summary)
		})
		if err != nil {
			logger.Debug().Err(err).Msg("Summary stream closed")
		}
	})
	return nil
}

// GetCharts godoc
// @Summary Get device charts
// @Description Voltage, current, power and energy panels of a device. Each panel fails independently.
// @Tags charts
// @Accept json
// @Produce json,application/cbor
// @Param id path string true "Device ID"
// @Param start query string false "Range start, RFC 3339 or YYYY-MM-DD"
// @Param end query string false "Range end, RFC 3339 or YYYY-MM-DD"
// @Param interval query string false "REALTIME, HOUR, DAY, WEEK or MONTH"
// @Success 200 {object} dashboard.ChartSet
// @Failure 400 {object} codeResp
// @Router /api/devices/{id}/charts [get]
func (c *Controller) GetCharts(ctx *fiber.Ctx) error {
	params, err := c.chartParams(ctx)
	if err != nil {
		return err
	}
	set, err := c.views.Charts(ctx.UserContext(), ctx.Params("id"), params)
	if err != nil {
		return c.failure(ctx, err, "Failed to get charts")
	}
	return respond(ctx, set)
}

// GetChart godoc
// @Summary Get a device chart
// @Description A single chart panel of a device
// @Tags charts
// @Accept json
// @Produce json,application/cbor
// @Param id path string true "Device ID"
// @Param metric path string true "voltage, current, power or energy"
// @Param start query string false "Range start, RFC 3339 or YYYY-MM-DD"
// @Param end query string false "Range end, RFC 3339 or YYYY-MM-DD"
// @Param interval query string false "REALTIME, HOUR, DAY, WEEK or MONTH"
// @Success 200 {object} dashboard.Panel
// @Failure 400 {object} codeResp
// @Failure 404 {object} codeResp
// @Router /api/devices/{id}/charts/{metric} [get]
func (c *Controller) GetChart(ctx *fiber.Ctx) error {
	metric, ok := series.LookupMetric(ctx.Params("metric"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Unknown metric")
	}
	params, err := c.chartParams(ctx)
	if err != nil {
		return err
	}
	panel, err := c.views.Chart(ctx.UserContext(), ctx.Params("id"), metric, params)
	if err != nil {
		return c.failure(ctx, err, "Failed to get chart")
	}
	return respond(ctx, panel)
}

// SettingsForm is the date range, interval and refresh cadence of the
// settings dialog.
type SettingsForm struct {
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	Interval     string `json:"interval,omitempty"`
	PollInterval string `json:"pollInterval,omitempty"`
}

// SettingsRequest carries the active selection and the candidate to apply.
type SettingsRequest struct {
	Current   SettingsForm `json:"current"`
	Candidate SettingsForm `json:"candidate"`
}

// SettingsResponse holds the selection in effect after the request. Error is
// set when the candidate was rejected, in which case Active is the current one.
type SettingsResponse struct {
	Active SettingsForm `json:"active"`
	Error  string       `json:"error,omitempty"`
}

// SettingsOptions lists the choices of the settings dialog and the selection
// a device view starts with.
type SettingsOptions struct {
	Intervals     []query.Interval `json:"intervals"`
	PollIntervals []string         `json:"pollIntervals"`
	Defaults      SettingsForm     `json:"defaults"`
}

// GetSettings godoc
// @Summary Get chart settings options
// @Description Selectable intervals and refresh cadences, and the default selection
// @Tags settings
// @Produce json
// @Success 200 {object} SettingsOptions
// @Router /api/settings [get]
func (c *Controller) GetSettings(ctx *fiber.Ctx) error {
	opts := SettingsOptions{
		Intervals: query.Intervals,
		Defaults:  c.formatForm(query.DefaultParams(time.Now().In(c.loc).Truncate(time.Minute), c.pollInterval)),
	}
	for _, d := range query.PollIntervals {
		opts.PollIntervals = append(opts.PollIntervals, d.String())
	}
	return ctx.JSON(opts)
}

// PostSettings godoc
// @Summary Apply chart settings
// @Description Validate a candidate selection and apply it only when valid
// @Tags settings
// @Accept json
// @Produce json
// @Param request body SettingsRequest true "Current and candidate selection"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} codeResp
// @Router /api/settings [post]
func (c *Controller) PostSettings(ctx *fiber.Ctx) error {
	var req SettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	current, err := c.parseForm(req.Current)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid current settings: "+err.Error())
	}
	if current.PollInterval == 0 {
		current.PollInterval = c.pollInterval
	}
	candidate, err := c.parseForm(req.Candidate)
	if err != nil {
		return ctx.JSON(SettingsResponse{Active: c.formatForm(current), Error: err.Error()})
	}

	active, err := current.Apply(candidate)
	resp := SettingsResponse{Active: c.formatForm(active)}
	if err != nil {
		resp.Error = err.Error()
	}
	return ctx.JSON(resp)
}

func (c *Controller) chartParams(ctx *fiber.Ctx) (query.Params, error) {
	params, err := c.parseForm(SettingsForm{
		Start:    ctx.Query("start"),
		End:      ctx.Query("end"),
		Interval: ctx.Query("interval"),
	})
	if err != nil {
		return query.Params{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return params, nil
}

func (c *Controller) parseForm(form SettingsForm) (query.Params, error) {
	var params query.Params
	var err error
	if params.Start, err = c.parseDate(form.Start); err != nil {
		return params, fmt.Errorf("invalid start date %q", form.Start)
	}
	if params.End, err = c.parseDate(form.End); err != nil {
		return params, fmt.Errorf("invalid end date %q", form.End)
	}
	if params.Interval, err = query.ParseInterval(form.Interval); err != nil {
		return params, err
	}
	if form.PollInterval != "" {
		if params.PollInterval, err = time.ParseDuration(form.PollInterval); err != nil {
			return params, fmt.Errorf("invalid poll interval %q", form.PollInterval)
		}
	}
	return params, nil
}

func (c *Controller) formatForm(p query.Params) SettingsForm {
	form := SettingsForm{Interval: p.Interval.String()}
	if !p.Start.IsZero() {
		form.Start = p.Start.In(c.loc).Format(time.RFC3339)
	}
	if !p.End.IsZero() {
		form.End = p.End.In(c.loc).Format(time.RFC3339)
	}
	if p.PollInterval != 0 {
		form.PollInterval = p.PollInterval.String()
	}
	return form
}

// parseDate returns the zero time for an empty value.
func (c *Controller) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// failure maps dashboard errors to HTTP errors.
func (c *Controller) failure(ctx *fiber.Ctx, err error, message string) error {
	var validationErr *query.ValidationError
	if errors.As(err, &validationErr) {
		return fiber.NewError(fiber.StatusBadRequest, validationErr.Message)
	}
	logger := zerolog.Ctx(ctx.UserContext())
	if telemetry.IsFetchError(err) {
		logger.Error().Err(err).Msg(message)
		return fiber.NewError(fiber.StatusBadGateway, dashboard.ErrLoadingData)
	}
	logger.Error().Err(err).Msg(message)
	return fiber.NewError(fiber.StatusInternalServerError, message)
}

// respond encodes v as CBOR when the client prefers it and as JSON otherwise.
func respond(ctx *fiber.Ctx, v any) error {
	if ctx.Accepts(mimeJSON, mimeCBOR) != mimeCBOR {
		return ctx.JSON(v)
	}
	data, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cbor response: %w", err)
	}
	ctx.Set(fiber.HeaderContentType, mimeCBOR)
	return ctx.Send(data)
}

// liveStream writes a keepalive before each summary fetch and cancels the
// stream once the client is gone, so a dead stream costs no upstream call.
type liveStream struct {
	source dashboard.SummarySource
	w      *bufio.Writer
	cancel context.CancelFunc
}

func (s *liveStream) Summary(ctx context.Context, deviceID string) (*dashboard.Summary, error) {
	if err := writeKeepalive(s.w); err != nil {
		s.cancel()
		return nil, fmt.Errorf("client gone: %w", err)
	}
	return s.source.Summary(ctx, deviceID)
}

func writeKeepalive(w *bufio.Writer) error {
	if _, err := w.WriteString(": keepalive\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

func writeEvent(w *bufio.Writer, seq int, summary *dashboard.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: summary\ndata: %s\n\n", seq, data); err != nil {
		return err
	}
	return w.Flush()
}
