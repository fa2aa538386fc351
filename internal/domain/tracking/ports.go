package tracking

import (
	"context"
	"errors"
)

// ---------------------------------------------------------------------------
// Tracking Errors
// ---------------------------------------------------------------------------

var (
	// Lookup errors
	ErrInvalidQuery  = errors.New("tracking: invalid order query")
	ErrOrderNotFound = errors.New("tracking: order not found")

	// Configuration errors
	ErrNotConfigured = errors.New("tracking: fulfillment platform not configured")
)

// FulfillmentGateway is the port to the fulfillment platform (orders and
// shipping labels). FindOrders returns raw candidates; the platform may match
// loosely (for example on order number alone), so exact filtering is the
// caller's responsibility.
type FulfillmentGateway interface {
	FindOrders(ctx context.Context, orderNumber, email string) ([]Order, error)
	// ListShipments returns the shipments recorded for an order. An order
	// without shipments yields an empty slice, not an error.
	ListShipments(ctx context.Context, orderNumber string) ([]Shipment, error)
}

// TrackingGateway is the port to the carrier-tracking aggregator. Verify never
// fails the request: transport problems surface as Evidence with
// OutcomeError, and the reconciler decides what that means.
type TrackingGateway interface {
	Verify(ctx context.Context, trackingNumber, carrierCode string) Evidence
}
