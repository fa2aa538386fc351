package tracking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment is a shipping label recorded by the fulfillment platform. A label
// existing does not mean a carrier has the parcel; that distinction is what
// Evidence adds.
type Shipment struct {
	ShipmentID     string
	TrackingNumber string
	CarrierCode    string
	ShipDate       *time.Time
	DeliveryDate   *time.Time
	VoidDate       *time.Time
	// TrackingStatus is the platform's own free-form tracking text, used only
	// by the platform-only delivery heuristic.
	TrackingStatus string
	Items          []ShipmentItem
}

// HasTrackingNumber reports whether the shipment can be verified at all.
func (s Shipment) HasTrackingNumber() bool {
	return s.TrackingNumber != ""
}

// ShipmentItem is a line item within a shipment.
type ShipmentItem struct {
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// EnrichedShipment is the output unit returned to the storefront: the platform
// shipment, the verification evidence, and positional numbering assigned after
// filtering so ShipmentNumber always runs 1..TotalShipments.
type EnrichedShipment struct {
	Shipment
	Evidence Evidence
	// CarrierName is the human-readable carrier label for display.
	CarrierName    string
	Shipped        bool
	Delivered      bool
	ShipmentNumber int
	TotalShipments int
}

// Result is the reconciler's verdict for one lookup.
type Result struct {
	Order Order
	// EffectiveStatus is what the customer sees. With tracking verification
	// active it is computed from evidence; otherwise it is the platform's raw
	// status passed through.
	EffectiveStatus OrderStatus
	Shipments       []EnrichedShipment
}
