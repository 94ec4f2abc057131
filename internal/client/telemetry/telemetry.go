// Package telemetry maps typed parameters onto the telemetry REST API.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/energy-monitor/energy-dashboard/internal/client/httpclient"
	"github.com/energy-monitor/energy-dashboard/internal/domain"
)

const (
	devicesPath    = "devices"
	attributesPath = "telemetry/attributes/values"
	metricsPath    = "telemetry/metrics/values"
)

// FetchError is returned for any network, HTTP or decoding failure.
// Callers get no status-specific detail beyond the wrapped cause.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err carries a *FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// Requester performs a GET relative to the API base URL and decodes JSON.
type Requester interface {
	GetJSON(ctx context.Context, path string, query httpclient.Query, out any) error
}

// Client interacts with the telemetry REST API.
type Client struct {
	requester Requester
}

// NewClient creates a new instance of Client.
func NewClient(requester Requester) (*Client, error) {
	if requester == nil {
		return nil, fmt.Errorf("requester is nil")
	}
	return &Client{requester: requester}, nil
}

// GetDevices fetches one page of devices.
func (c *Client) GetDevices(ctx context.Context, q DeviceQuery) (*domain.DevicePage, error) {
	var page domain.DevicePage
	if err := c.requester.GetJSON(ctx, devicesPath, q, &page); err != nil {
		return nil, &FetchError{Op: "devices", Err: err}
	}
	return &page, nil
}

// GetDevice fetches a single device by id.
func (c *Client) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	switch id {
	case "":
		return nil, &FetchError{Op: "device", Err: errors.New("device id is empty")}
	case ".", "..":
		return nil, &FetchError{Op: "device", Err: fmt.Errorf("invalid device id %q", id)}
	}
	var device domain.Device
	if err := c.requester.GetJSON(ctx, devicesPath+"/"+url.PathEscape(id), nil, &device); err != nil {
		return nil, &FetchError{Op: "device", Err: err}
	}
	return &device, nil
}

// GetAttributes fetches the latest attribute values of a device.
func (c *Client) GetAttributes(ctx context.Context, q AttributeQuery) ([]domain.Attribute, error) {
	var attrs []domain.Attribute
	if err := c.requester.GetJSON(ctx, attributesPath, q, &attrs); err != nil {
		return nil, &FetchError{Op: "attributes", Err: err}
	}
	return attrs, nil
}

// GetMetricValues fetches aggregated samples, newest first.
func (c *Client) GetMetricValues(ctx context.Context, q MetricQuery) ([]domain.Sample, error) {
	var samples []domain.Sample
	if err := c.requester.GetJSON(ctx, metricsPath, q, &samples); err != nil {
		return nil, &FetchError{Op: "metric " + q.Key, Err: err}
	}
	return samples, nil
}
