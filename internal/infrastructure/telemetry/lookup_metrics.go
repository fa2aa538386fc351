// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Lookup outcome values recorded on the lookup counter.
const (
	LookupOutcomeFound         = "found"
	LookupOutcomeNotFound      = "not_found"
	LookupOutcomeInvalid       = "invalid"
	LookupOutcomeUpstreamError = "upstream_error"
	LookupOutcomeInternalError = "internal_error"
)

// LookupMetrics tracks order-status lookup activity: how lookups resolve,
// how long upstream calls take, and how tracking verification turns out.
type LookupMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	lookupTotal       *Counter
	verificationTotal *Counter
	upstreamDuration  *Histogram
}

// LookupMetricsConfig holds configuration for lookup metrics.
type LookupMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewLookupMetrics creates a new LookupMetrics instance.
func NewLookupMetrics(cfg LookupMetricsConfig) (*LookupMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LookupMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	lm.lookupTotal, err = NewCounter(
		cfg.Meter,
		"shoptrack_lookup_total",
		"Total number of order-status lookups by outcome",
		"{lookups}",
	)
	if err != nil {
		return nil, err
	}

	lm.verificationTotal, err = NewCounter(
		cfg.Meter,
		"shoptrack_verification_total",
		"Total number of tracking verifications by outcome",
		"{verifications}",
	)
	if err != nil {
		return nil, err
	}

	lm.upstreamDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "shoptrack_upstream_duration_seconds",
		Description: "Duration of upstream API operations",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordLookup records a completed lookup with its outcome and, for found
// orders, the effective status served.
func (lm *LookupMetrics) RecordLookup(ctx context.Context, outcome string, effectiveStatus string) {
	if effectiveStatus != "" {
		lm.lookupTotal.Inc(ctx,
			AttrLookupOutcome.String(outcome),
			AttrOrderStatus.String(effectiveStatus),
		)
		return
	}
	lm.lookupTotal.Inc(ctx, AttrLookupOutcome.String(outcome))
}

// RecordVerification records one tracking verification result.
func (lm *LookupMetrics) RecordVerification(ctx context.Context, outcome string, carrierCode string) {
	lm.verificationTotal.Inc(ctx,
		AttrVerificationOutcome.String(outcome),
		AttrCarrierCode.String(carrierCode),
	)
}

// RecordUpstreamDuration records the latency of one upstream operation,
// e.g. ("fulfillment", "find_orders") or ("tracker", "verify").
func (lm *LookupMetrics) RecordUpstreamDuration(ctx context.Context, upstream, operation string, d time.Duration) {
	lm.upstreamDuration.RecordDuration(ctx, d,
		AttrUpstream.String(upstream),
		AttrUpstreamOperation.String(operation),
	)
}
