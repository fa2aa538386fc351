package orderstatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoptrack/backend/internal/domain/tracking"
	"github.com/shoptrack/backend/internal/infrastructure/telemetry"
)

// defaultMaxConcurrent bounds parallel tracking verifications per lookup.
const defaultMaxConcurrent = 2

// Service orchestrates an order-status lookup: find the order on the
// fulfillment platform, list its shipments, verify each shipment against the
// tracking aggregator, and reconcile everything into one customer-facing
// result.
type Service struct {
	fulfillment   tracking.FulfillmentGateway
	tracker       tracking.TrackingGateway
	reconciler    *tracking.Reconciler
	logger        *zap.Logger
	metrics       *telemetry.LookupMetrics
	maxConcurrent int
}

// ServiceConfig carries the service dependencies. Fulfillment may be nil when
// the platform credentials are absent; Lookup then fails with ErrNotConfigured.
// Tracker may be nil: lookups still work, with verification skipped and the
// platform's raw status passed through.
type ServiceConfig struct {
	Fulfillment   tracking.FulfillmentGateway
	Tracker       tracking.TrackingGateway
	Logger        *zap.Logger
	Metrics       *telemetry.LookupMetrics
	MaxConcurrent int
}

// NewService creates an order-status Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Service{
		fulfillment:   cfg.Fulfillment,
		tracker:       cfg.Tracker,
		reconciler:    tracking.NewReconciler(),
		logger:        logger,
		metrics:       cfg.Metrics,
		maxConcurrent: maxConcurrent,
	}
}

// Lookup resolves an order query to its reconciled status.
//
// The order number and email must both match the platform's record exactly
// (email case-insensitively); candidate orders the platform returned on a
// looser match are filtered out here. Shipment verification runs concurrently
// but bounded, and a verification failure never fails the lookup.
func (s *Service) Lookup(ctx context.Context, query tracking.OrderQuery) (*tracking.Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "orderstatus", "lookup")
	defer span.End()

	if err := query.Validate(); err != nil {
		s.recordLookup(ctx, telemetry.LookupOutcomeInvalid, "")
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, query.OrderNumber)

	if s.fulfillment == nil {
		s.recordLookup(ctx, telemetry.LookupOutcomeInternalError, "")
		return nil, tracking.ErrNotConfigured
	}

	order, err := s.findOrder(ctx, query)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcomeForError(ctx, err)
		return nil, err
	}

	shipments, err := s.listShipments(ctx, query.OrderNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordLookup(ctx, telemetry.LookupOutcomeUpstreamError, "")
		return nil, fmt.Errorf("list shipments: %w", err)
	}

	trackingActive := s.tracker != nil
	var evidence []tracking.Evidence
	if trackingActive {
		evidence = s.verifyShipments(ctx, shipments)
	}

	result := s.reconciler.Reconcile(order, shipments, evidence, trackingActive)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderStatus, result.EffectiveStatus.String(),
		telemetry.SpanAttrShipmentCount, len(result.Shipments),
	)
	s.recordLookup(ctx, telemetry.LookupOutcomeFound, result.EffectiveStatus.String())

	s.logger.Info("order status lookup completed",
		zap.String("order_number", order.OrderNumber),
		zap.String("raw_status", order.Status.String()),
		zap.String("effective_status", result.EffectiveStatus.String()),
		zap.Int("shipments_total", len(shipments)),
		zap.Int("shipments_visible", len(result.Shipments)),
		zap.Bool("tracking_active", trackingActive),
	)

	return &result, nil
}

// findOrder queries the fulfillment platform and filters the candidates down
// to an exact match.
func (s *Service) findOrder(ctx context.Context, query tracking.OrderQuery) (tracking.Order, error) {
	start := time.Now()
	orders, err := s.fulfillment.FindOrders(ctx, query.OrderNumber, query.Email)
	s.recordUpstream(ctx, "fulfillment", "find_orders", time.Since(start))
	if err != nil {
		return tracking.Order{}, fmt.Errorf("find orders: %w", err)
	}

	for _, o := range orders {
		if query.Matches(o) {
			return o, nil
		}
	}

	s.logger.Debug("no exact order match",
		zap.String("order_number", query.OrderNumber),
		zap.Int("candidates", len(orders)),
	)
	return tracking.Order{}, tracking.ErrOrderNotFound
}

func (s *Service) listShipments(ctx context.Context, orderNumber string) ([]tracking.Shipment, error) {
	start := time.Now()
	shipments, err := s.fulfillment.ListShipments(ctx, orderNumber)
	s.recordUpstream(ctx, "fulfillment", "list_shipments", time.Since(start))
	return shipments, err
}

// verifyShipments runs tracking verification for every shipment with a bounded
// level of parallelism. The returned slice is index-aligned with shipments.
// Verify never returns an error, so the group only coordinates completion.
func (s *Service) verifyShipments(ctx context.Context, shipments []tracking.Shipment) []tracking.Evidence {
	evidence := make([]tracking.Evidence, len(shipments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, shipment := range shipments {
		if !shipment.HasTrackingNumber() {
			evidence[i] = tracking.NoTrackingNumberEvidence()
			continue
		}

		g.Go(func() error {
			start := time.Now()
			evidence[i] = s.tracker.Verify(gctx, shipment.TrackingNumber, shipment.CarrierCode)
			s.recordUpstream(gctx, "tracker", "verify", time.Since(start))
			if s.metrics != nil {
				s.metrics.RecordVerification(gctx, evidence[i].Outcome.String(), shipment.CarrierCode)
			}
			return nil
		})
	}

	_ = g.Wait()
	return evidence
}

func (s *Service) recordLookup(ctx context.Context, outcome, effectiveStatus string) {
	if s.metrics != nil {
		s.metrics.RecordLookup(ctx, outcome, effectiveStatus)
	}
}

func (s *Service) recordUpstream(ctx context.Context, upstream, operation string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordUpstreamDuration(ctx, upstream, operation, d)
	}
}

func (s *Service) recordOutcomeForError(ctx context.Context, err error) {
	outcome := telemetry.LookupOutcomeUpstreamError
	if errors.Is(err, tracking.ErrOrderNotFound) {
		outcome = telemetry.LookupOutcomeNotFound
	}
	s.recordLookup(ctx, outcome, "")
}
