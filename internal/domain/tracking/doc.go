// Package tracking contains the order-tracking bounded context.
// This context reconciles the fulfillment platform's coarse order state with
// carrier scan evidence from a tracking aggregator.
//
// Key concepts:
//   - Order / Shipment: order metadata and shipping labels as reported by the
//     fulfillment platform (the system of record for labels, not for custody)
//   - Evidence: what the tracking aggregator knows about a tracking number
//   - Reconciler: fuses both sources into the effective, customer-facing status
//
// Design Pattern: Ports & Adapters
//   - Ports (FulfillmentGateway, TrackingGateway) are defined here
//   - Adapters live in the infrastructure layer (fulfillment, tracker)
package tracking
