// Package fulfillment adapts the fulfillment platform's order and shipment
// APIs to the tracking domain's FulfillmentGateway port.
package fulfillment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/domain/tracking"
	"github.com/shoptrack/backend/internal/infrastructure/httpclient"
)

// Adapter implements tracking.FulfillmentGateway against the fulfillment API.
type Adapter struct {
	config *Config
	client *httpclient.Client
	logger *zap.Logger
}

// NewAdapter creates a fulfillment adapter with the given configuration.
func NewAdapter(config *Config, logger *zap.Logger) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	credentials := base64.StdEncoding.EncodeToString(
		[]byte(config.APIKey + ":" + config.APISecret))

	client := httpclient.New(httpclient.Config{
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		Headers: map[string]string{
			"Authorization": "Basic " + credentials,
		},
	})

	return &Adapter{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// FindOrders returns orders matching the given order number and customer
// email. Both filters are passed upstream; the caller still re-verifies the
// match because the upstream email filter is advisory.
func (a *Adapter) FindOrders(ctx context.Context, orderNumber, email string) ([]tracking.Order, error) {
	resp, err := a.client.Get(ctx, a.config.APIBaseURL+"/orders", map[string]string{
		"orderNumber":   orderNumber,
		"customerEmail": email,
	})
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fulfillment: finding orders: %w", err)
	}

	var wire orderListResponse
	if err := resp.DecodeJSON(&wire); err != nil {
		return nil, fmt.Errorf("fulfillment: decoding order list: %w", err)
	}

	orders := make([]tracking.Order, 0, len(wire.Orders))
	for _, w := range wire.Orders {
		orders = append(orders, convertOrder(w))
	}

	a.logger.Debug("fulfillment order lookup",
		zap.String("order_number", orderNumber),
		zap.Int("matches", len(orders)))

	return orders, nil
}

// ListShipments returns all shipments recorded for the given order number,
// including voided labels. Filtering voided labels is a reconciliation
// concern, not a transport one.
func (a *Adapter) ListShipments(ctx context.Context, orderNumber string) ([]tracking.Shipment, error) {
	resp, err := a.client.Get(ctx, a.config.APIBaseURL+"/shipments", map[string]string{
		"orderNumber":          orderNumber,
		"includeShipmentItems": "true",
	})
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fulfillment: listing shipments: %w", err)
	}

	var wire shipmentListResponse
	if err := resp.DecodeJSON(&wire); err != nil {
		return nil, fmt.Errorf("fulfillment: decoding shipment list: %w", err)
	}

	shipments := make([]tracking.Shipment, 0, len(wire.Shipments))
	for _, w := range wire.Shipments {
		shipments = append(shipments, convertShipment(w))
	}

	a.logger.Debug("fulfillment shipment lookup",
		zap.String("order_number", orderNumber),
		zap.Int("shipments", len(shipments)))

	return shipments, nil
}

func convertOrder(w wireOrder) tracking.Order {
	var orderDate time.Time
	if t := parseTimestamp(w.OrderDate); t != nil {
		orderDate = *t
	}
	return tracking.Order{
		OrderNumber:   w.OrderNumber,
		CustomerEmail: w.CustomerEmail,
		OrderDate:     orderDate,
		Status:        tracking.NormalizeOrderStatus(w.OrderStatus),
	}
}

func convertShipment(w wireShipment) tracking.Shipment {
	s := tracking.Shipment{
		ShipmentID:     fmt.Sprintf("%d", w.ShipmentID),
		TrackingNumber: w.TrackingNumber,
		CarrierCode:    w.CarrierCode,
		ShipDate:       parseTimestamp(w.ShipDate),
		DeliveryDate:   parseTimestamp(w.DeliveryDate),
		VoidDate:       parseTimestamp(w.VoidDate),
		TrackingStatus: w.TrackingStatus,
	}
	// Some records flag voids without a void timestamp. Synthesize one so
	// downstream void handling keys off a single field.
	if w.Voided && s.VoidDate == nil {
		now := time.Now()
		s.VoidDate = &now
	}
	for _, item := range w.ShipmentItems {
		s.Items = append(s.Items, tracking.ShipmentItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  decimal.NewFromInt(item.Quantity),
			UnitPrice: item.UnitPrice,
		})
	}
	return s
}
