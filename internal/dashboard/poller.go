package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/energy-monitor/energy-dashboard/internal/client/querycache"
	"github.com/energy-monitor/energy-dashboard/internal/query"
	"github.com/rs/zerolog"
)

// SummarySource produces device summaries.
type SummarySource interface {
	Summary(ctx context.Context, deviceID string) (*Summary, error)
}

// Poller re-fetches a device summary on a fixed cadence.
type Poller struct {
	source   SummarySource
	logger   zerolog.Logger
	fallback time.Duration
}

// NewPoller creates a Poller. every is used when Run is given a zero cadence.
func NewPoller(source SummarySource, every time.Duration, logger zerolog.Logger) (*Poller, error) {
	if source == nil {
		return nil, fmt.Errorf("summary source is nil")
	}
	if err := query.ValidatePollInterval(every); err != nil || every == 0 {
		return nil, fmt.Errorf("invalid default poll interval %s", every)
	}
	return &Poller{source: source, logger: logger, fallback: every}, nil
}

// WithSource returns a copy of p that polls source.
func (p *Poller) WithSource(source SummarySource) *Poller {
	next := *p
	next.source = source
	return &next
}

// Run emits a summary immediately and then every tick until ctx is done or
// emit fails. A failed fetch is logged and skipped; the next tick retries.
// Every tick bypasses the query cache. Returns nil when ctx ends.
func (p *Poller) Run(ctx context.Context, deviceID string, every time.Duration, emit func(*Summary) error) error {
	if every == 0 {
		every = p.fallback
	}
	if err := query.ValidatePollInterval(every); err != nil {
		return err
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	fetchCtx := querycache.Fresh(ctx)
	for {
		summary, err := p.source.Summary(fetchCtx, deviceID)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			p.logger.Warn().Err(err).Str("deviceId", deviceID).Msg("Failed to poll device summary")
		default:
			if err := emit(summary); err != nil {
				return fmt.Errorf("failed to emit summary: %w", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
