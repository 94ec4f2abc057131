package querycache

import (
	"context"

	"github.com/energy-monitor/energy-dashboard/internal/client/telemetry"
	"github.com/energy-monitor/energy-dashboard/internal/domain"
)

// API is the set of telemetry accessors the cache can front.
type API interface {
	GetDevices(ctx context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error)
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	GetAttributes(ctx context.Context, q telemetry.AttributeQuery) ([]domain.Attribute, error)
	GetMetricValues(ctx context.Context, q telemetry.MetricQuery) ([]domain.Sample, error)
}

// Client memoises every accessor of an API by its query string.
type Client struct {
	api   API
	cache *Cache
}

// NewClient wraps api with cache.
func NewClient(api API, cache *Cache) *Client {
	return &Client{api: api, cache: cache}
}

// GetDevices implements API.
func (c *Client) GetDevices(ctx context.Context, q telemetry.DeviceQuery) (*domain.DevicePage, error) {
	return Get(ctx, c.cache, "devices?"+q.Encode(), func(ctx context.Context) (*domain.DevicePage, error) {
		return c.api.GetDevices(ctx, q)
	})
}

// GetDevice implements API.
func (c *Client) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	return Get(ctx, c.cache, "device:"+id, func(ctx context.Context) (*domain.Device, error) {
		return c.api.GetDevice(ctx, id)
	})
}

// GetAttributes implements API.
func (c *Client) GetAttributes(ctx context.Context, q telemetry.AttributeQuery) ([]domain.Attribute, error) {
	return Get(ctx, c.cache, "attributes?"+q.Encode(), func(ctx context.Context) ([]domain.Attribute, error) {
		return c.api.GetAttributes(ctx, q)
	})
}

// GetMetricValues implements API.
func (c *Client) GetMetricValues(ctx context.Context, q telemetry.MetricQuery) ([]domain.Sample, error) {
	return Get(ctx, c.cache, "metrics?"+q.Encode(), func(ctx context.Context) ([]domain.Sample, error) {
		return c.api.GetMetricValues(ctx, q)
	})
}
