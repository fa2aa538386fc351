package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Fulfillment API Wire Types
// ---------------------------------------------------------------------------

// orderListResponse is the response for the GET /orders API
type orderListResponse struct {
	Orders []wireOrder `json:"orders"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Pages  int         `json:"pages"`
}

// wireOrder represents an order as returned by the fulfillment API
type wireOrder struct {
	OrderID       int64  `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	OrderKey      string `json:"orderKey,omitempty"`
	OrderDate     string `json:"orderDate"`
	OrderStatus   string `json:"orderStatus"`
	CustomerEmail string `json:"customerEmail"`
}

// shipmentListResponse is the response for the GET /shipments API
type shipmentListResponse struct {
	Shipments []wireShipment `json:"shipments"`
	Total     int            `json:"total"`
	Page      int            `json:"page"`
	Pages     int            `json:"pages"`
}

// wireShipment represents a shipment as returned by the fulfillment API
type wireShipment struct {
	ShipmentID     int64              `json:"shipmentId"`
	OrderNumber    string             `json:"orderNumber"`
	TrackingNumber string             `json:"trackingNumber"`
	CarrierCode    string             `json:"carrierCode"`
	ShipDate       string             `json:"shipDate"`
	DeliveryDate   string             `json:"deliveryDate,omitempty"`
	VoidDate       string             `json:"voidDate,omitempty"`
	Voided         bool               `json:"voided"`
	TrackingStatus string             `json:"trackingStatus,omitempty"`
	ShipmentItems  []wireShipmentItem `json:"shipmentItems,omitempty"`
}

// wireShipmentItem represents a line item within a shipment
type wireShipmentItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// timestampLayouts lists the formats the fulfillment API emits for dates.
// Shipment timestamps come back in platform-local time without a zone
// designator; date-only values appear on older records.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseTimestamp parses a fulfillment API timestamp, returning nil for empty
// or unparseable values rather than failing the whole lookup.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
