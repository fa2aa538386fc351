package tracking

import "strings"

// ShipmentState is the per-shipment classification the reconciler assigns.
type ShipmentState string

const (
	// ShipmentProcessing means a label exists but no carrier scan was seen
	ShipmentProcessing ShipmentState = "processing"
	// ShipmentShipped means a carrier has scanned the parcel
	ShipmentShipped ShipmentState = "shipped"
	// ShipmentDelivered means the parcel arrived
	ShipmentDelivered ShipmentState = "delivered"
)

// PlatformDelivered is the fulfillment platform's own delivery heuristic, used
// when no tracking evidence is available for a shipment: a delivery date wins,
// a void date (without a delivery date) loses, and otherwise the platform's
// tracking text is searched for "delivered". No signal means not delivered.
func PlatformDelivered(s Shipment) bool {
	if s.DeliveryDate != nil {
		return true
	}
	if s.VoidDate != nil {
		return false
	}
	return strings.Contains(strings.ToLower(s.TrackingStatus), "delivered")
}

// Reconciler fuses fulfillment shipments with tracking evidence into one
// customer-facing result. The rules are centralized here so they stay testable
// without any transport in the picture.
type Reconciler struct{}

// NewReconciler returns a Reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// classifyShipment decides the per-shipment state. Evidence and the platform's
// own delivery signal are combined with logical OR, so either source can
// assert delivery. A verification error fails open toward "assume shipped":
// a transient aggregator outage must not make legitimately shipped orders
// vanish from the response.
func (r *Reconciler) classifyShipment(s Shipment, ev Evidence) ShipmentState {
	delivered := ev.Delivered || PlatformDelivered(s)
	scanned := ev.CarrierScanned || ev.Outcome == OutcomeError

	switch {
	case delivered:
		return ShipmentDelivered
	case scanned:
		return ShipmentShipped
	default:
		return ShipmentProcessing
	}
}

// Reconcile computes the effective order status and the enriched shipment list.
//
// When trackingActive is true, evidence must hold one entry per shipment and
// label-only shipments (neither shipped nor delivered) are suppressed from the
// output; numbering is assigned after that filter so ShipmentNumber is always
// dense 1..TotalShipments in stable original order.
//
// When trackingActive is false, every shipment is returned and the platform's
// raw status passes through unchanged.
func (r *Reconciler) Reconcile(order Order, shipments []Shipment, evidence []Evidence, trackingActive bool) Result {
	result := Result{
		Order:           order,
		EffectiveStatus: order.Status,
		Shipments:       make([]EnrichedShipment, 0, len(shipments)),
	}

	delivered, shipped := 0, 0

	for i, s := range shipments {
		var ev Evidence
		if trackingActive && i < len(evidence) {
			ev = evidence[i]
		}

		state := r.classifyShipmentMode(s, ev, trackingActive)
		if trackingActive && state == ShipmentProcessing {
			// Label-only shipment: nothing useful to show the customer.
			continue
		}

		enriched := EnrichedShipment{
			Shipment:    s,
			Evidence:    ev,
			CarrierName: CarrierDisplayName(s.CarrierCode),
			Shipped:     state != ShipmentProcessing,
			Delivered:   state == ShipmentDelivered,
		}
		result.Shipments = append(result.Shipments, enriched)

		switch state {
		case ShipmentDelivered:
			delivered++
			shipped++
		case ShipmentShipped:
			shipped++
		}
	}

	for i := range result.Shipments {
		result.Shipments[i].ShipmentNumber = i + 1
		result.Shipments[i].TotalShipments = len(result.Shipments)
	}

	if trackingActive {
		result.EffectiveStatus = r.aggregateStatus(order.Status, len(shipments), len(result.Shipments), delivered, shipped)
	}

	return result
}

// classifyShipmentMode degrades to the platform-only heuristic when the
// tracking aggregator is not configured.
func (r *Reconciler) classifyShipmentMode(s Shipment, ev Evidence, trackingActive bool) ShipmentState {
	if trackingActive {
		return r.classifyShipment(s, ev)
	}
	if PlatformDelivered(s) {
		return ShipmentDelivered
	}
	if s.ShipDate != nil && s.VoidDate == nil {
		return ShipmentShipped
	}
	return ShipmentProcessing
}

// aggregateStatus applies the tie-break ladder: all delivered, some delivered,
// some shipped, rechecked strictly in that order. When the platform claimed
// "shipped" but no shipment survived verification, the claim is overridden to
// awaiting_fulfillment: labels went out, no carrier touched any of them.
func (r *Reconciler) aggregateStatus(raw OrderStatus, total, surviving, delivered, shipped int) OrderStatus {
	if total == 0 {
		return raw
	}

	switch {
	case surviving > 0 && delivered == surviving:
		return OrderStatusDelivered
	case delivered > 0:
		return OrderStatusPartiallyDelivered
	case shipped > 0:
		return OrderStatusShipped
	case raw == OrderStatusShipped:
		return OrderStatusAwaitingFulfillment
	default:
		return raw
	}
}
