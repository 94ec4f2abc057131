package telemetry

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// AggMax takes the maximum of every interval bucket.
	AggMax = "MAX"
	// resultLimit caps every metric query.
	resultLimit = 100
)

// params is a query string that keeps its parameters in insertion order.
type params [][2]string

func (p params) add(key, value string) params {
	return append(p, [2]string{key, value})
}

// Encode implements httpclient.Query.
func (p params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// DeviceQuery selects a page of devices carrying Tags.
type DeviceQuery struct {
	Tags     []string
	Page     int
	PageSize int
}

// Encode renders the query with comma-joined tags and snake_case keys.
// Tags are omitted when empty.
func (q DeviceQuery) Encode() string {
	var p params
	if len(q.Tags) > 0 {
		p = p.add("tags", strings.Join(q.Tags, ","))
	}
	return p.add("page", strconv.Itoa(q.Page)).
		add("page_size", strconv.Itoa(q.PageSize)).
		Encode()
}

// AttributeQuery selects the latest values of Keys for one device.
type AttributeQuery struct {
	DeviceID string
	Keys     []string
}

func (q AttributeQuery) Encode() string {
	return params{}.
		add("device_id", q.DeviceID).
		add("keys", strings.Join(q.Keys, ",")).
		Encode()
}

// MetricQuery selects aggregated values of one metric key over a window.
type MetricQuery struct {
	DeviceID     string
	Key          string
	Start        time.Time
	End          time.Time
	Interval     int
	IntervalType string
	AggType      string
}

// Encode renders the query. Times are sent as RFC 3339 in UTC and the result
// count is always capped.
func (q MetricQuery) Encode() string {
	return params{}.
		add("device_id", q.DeviceID).
		add("start", q.Start.UTC().Format(time.RFC3339)).
		add("end", q.End.UTC().Format(time.RFC3339)).
		add("key", q.Key).
		add("interval", strconv.Itoa(q.Interval)).
		add("interval_type", q.IntervalType).
		add("agg_type", q.AggType).
		add("limit", strconv.Itoa(resultLimit)).
		Encode()
}
