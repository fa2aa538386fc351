package tracking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// MinOrderNumberLength is the shortest order number accepted for lookup.
const MinOrderNumberLength = 3

// OrderQuery is the customer-supplied lookup input. Build one with NewOrderQuery
// so both fields are trimmed before validation or matching.
type OrderQuery struct {
	OrderNumber string
	Email       string
}

// NewOrderQuery trims both fields and returns the query ready for Validate.
func NewOrderQuery(orderNumber, email string) OrderQuery {
	return OrderQuery{
		OrderNumber: strings.TrimSpace(orderNumber),
		Email:       strings.TrimSpace(email),
	}
}

// Validate checks the query against the lookup rules. The HTTP layer performs
// the same checks through binding tags; this guards direct service callers.
func (q OrderQuery) Validate() error {
	if len(q.OrderNumber) < MinOrderNumberLength {
		return fmt.Errorf("%w: order number must be at least %d characters", ErrInvalidQuery, MinOrderNumberLength)
	}
	if _, err := mail.ParseAddress(q.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidQuery)
	}
	return nil
}

// Matches reports whether an order candidate is an exact match for the query:
// order number compared case-sensitively, email case-insensitively.
func (q OrderQuery) Matches(o Order) bool {
	return o.OrderNumber == q.OrderNumber &&
		strings.EqualFold(strings.TrimSpace(o.CustomerEmail), q.Email)
}

// ---------------------------------------------------------------------------
// OrderStatus represents the fulfillment status of an order
// ---------------------------------------------------------------------------

// OrderStatus is the order-level fulfillment status. The set is open: statuses
// the platform reports that we do not know pass through lowercased.
type OrderStatus string

const (
	// OrderStatusAwaitingFulfillment indicates no label has genuinely gone out yet
	OrderStatusAwaitingFulfillment OrderStatus = "awaiting_fulfillment"
	// OrderStatusAwaitingShipment indicates labels exist but shipping is pending
	OrderStatusAwaitingShipment OrderStatus = "awaiting_shipment"
	// OrderStatusShipped indicates at least one shipment is with a carrier
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusPartiallyDelivered indicates some but not all shipments arrived
	OrderStatusPartiallyDelivered OrderStatus = "partially_delivered"
	// OrderStatusDelivered indicates every shipment arrived
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusOnHold indicates the platform is holding the order
	OrderStatusOnHold OrderStatus = "on_hold"
)

// String returns the string representation of OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// NormalizeOrderStatus lowercases a raw platform status string so unknown
// values stay usable in responses.
func NormalizeOrderStatus(raw string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Order is an order as reported by the fulfillment platform. Status is
// advisory: the reconciler may override it with an effective status computed
// from tracking evidence.
type Order struct {
	OrderNumber   string
	CustomerEmail string
	OrderDate     time.Time
	Status        OrderStatus
}
