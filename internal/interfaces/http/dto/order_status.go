package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoptrack/backend/internal/domain/tracking"
)

// OrderStatusRequest is the lookup request body
type OrderStatusRequest struct {
	OrderNumber string `json:"order_number" binding:"required,min=3"`
	Email       string `json:"email" binding:"required,email"`
}

// OrderStatusResponse is the lookup response payload
type OrderStatusResponse struct {
	OrderNumber   string             `json:"order_number"`
	CustomerEmail string             `json:"customer_email"`
	OrderDate     time.Time          `json:"order_date"`
	OrderStatus   string             `json:"order_status"`
	Shipments     []ShipmentResponse `json:"shipments"`
}

// ShipmentResponse is one shipment within the lookup response. ShipmentNumber
// runs 1..TotalShipments over the shipments actually shown.
type ShipmentResponse struct {
	ShipmentID     string                 `json:"shipment_id"`
	TrackingNumber string                 `json:"tracking_number,omitempty"`
	CarrierCode    string                 `json:"carrier_code,omitempty"`
	CarrierName    string                 `json:"carrier_name,omitempty"`
	ShipDate       *time.Time             `json:"ship_date,omitempty"`
	DeliveryDate   *time.Time             `json:"delivery_date,omitempty"`
	Shipped        bool                   `json:"shipped"`
	Delivered      bool                   `json:"delivered"`
	Verification   string                 `json:"verification"`
	LatestEvent    *TrackEventResponse    `json:"latest_event,omitempty"`
	Items          []ShipmentItemResponse `json:"items,omitempty"`
	ShipmentNumber int                    `json:"shipment_number"`
	TotalShipments int                    `json:"total_shipments"`
}

// TrackEventResponse is the latest carrier scan event for a shipment
type TrackEventResponse struct {
	Status   string     `json:"status"`
	Location string     `json:"location,omitempty"`
	Time     *time.Time `json:"time,omitempty"`
}

// ShipmentItemResponse is a line item within a shipment
type ShipmentItemResponse struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderStatusResponse converts a reconciled lookup result into the response
// payload.
func NewOrderStatusResponse(result *tracking.Result) OrderStatusResponse {
	resp := OrderStatusResponse{
		OrderNumber:   result.Order.OrderNumber,
		CustomerEmail: result.Order.CustomerEmail,
		OrderDate:     result.Order.OrderDate,
		OrderStatus:   result.EffectiveStatus.String(),
		Shipments:     make([]ShipmentResponse, 0, len(result.Shipments)),
	}

	for _, s := range result.Shipments {
		resp.Shipments = append(resp.Shipments, newShipmentResponse(s))
	}

	return resp
}

func newShipmentResponse(s tracking.EnrichedShipment) ShipmentResponse {
	resp := ShipmentResponse{
		ShipmentID:     s.ShipmentID,
		TrackingNumber: s.TrackingNumber,
		CarrierCode:    s.CarrierCode,
		CarrierName:    s.CarrierName,
		ShipDate:       s.ShipDate,
		DeliveryDate:   s.DeliveryDate,
		Shipped:        s.Shipped,
		Delivered:      s.Delivered,
		Verification:   s.Evidence.Outcome.String(),
		ShipmentNumber: s.ShipmentNumber,
		TotalShipments: s.TotalShipments,
	}

	// Tracking evidence is the fresher source for the delivery date.
	if s.Evidence.DeliveryDate != nil {
		resp.DeliveryDate = s.Evidence.DeliveryDate
	}

	if e := s.Evidence.LatestEvent; e != nil {
		resp.LatestEvent = &TrackEventResponse{
			Status:   e.Status,
			Location: e.Location,
			Time:     e.Time,
		}
	}

	for _, item := range s.Items {
		resp.Items = append(resp.Items, ShipmentItemResponse{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return resp
}
