package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// orderTransitions is the allowed-next table for order status changes.
// delivered, cancelled and refunded are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a product at the time the order was placed.
// Later edits to the product must never change these fields.
type OrderItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

// StatusHistoryEntry is one row of the append-only status audit log.
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
	ActorID   int         `json:"actor_id,omitempty"`
}

type Order struct {
	ID              int                  `json:"id"`
	OrderNumber     string               `json:"order_number"`
	UserID          int                  `json:"user_id"`
	Items           []OrderItem          `json:"items"`
	Subtotal        float64              `json:"subtotal"`
	Tax             float64              `json:"tax"`
	Shipping        float64              `json:"shipping"`
	Discount        float64              `json:"discount"`
	Total           float64              `json:"total"`
	Status          OrderStatus          `json:"status"`
	History         []StatusHistoryEntry `json:"history"`
	ShippingAddress string               `json:"shipping_address"`
	PaymentMethod   PaymentMethod        `json:"payment_method"`
	PaymentStatus   PaymentStatus        `json:"payment_status"`
	ConfirmedAt     *time.Time           `json:"confirmed_at,omitempty"`
	ProcessingAt    *time.Time           `json:"processing_at,omitempty"`
	ShippedAt       *time.Time           `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time           `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	CancelledBy     int                  `json:"cancelled_by,omitempty"`
	Version         int                  `json:"version"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// RecomputeTotals derives subtotal, tax, shipping and total from the item
// snapshots. Calling it again without changing the items yields the same
// result.
func (o *Order) RecomputeTotals(pricing PricingConfig) {
	o.Subtotal = 0
	for i := range o.Items {
		o.Items[i].LineTotal = Round2(o.Items[i].Price * float64(o.Items[i].Quantity))
		o.Subtotal += o.Items[i].LineTotal
	}
	o.Subtotal = Round2(o.Subtotal)
	o.Tax = pricing.Tax(o.Subtotal)
	o.Shipping = pricing.Shipping(o.Subtotal)
	o.Total = Round2(o.Subtotal + o.Tax + o.Shipping - o.Discount)
}

// AppendHistory records a status change in the audit log. Entries are only
// ever appended, never rewritten.
func (o *Order) AppendHistory(status OrderStatus, actorID int, note string) {
	o.History = append(o.History, StatusHistoryEntry{
		Status:    status,
		Timestamp: time.Now(),
		Note:      note,
		ActorID:   actorID,
	})
}

// MarkStatusTimestamp stamps the status-specific timestamp field for the
// given status.
func (o *Order) MarkStatusTimestamp(status OrderStatus, at time.Time) {
	switch status {
	case OrderConfirmed:
		o.ConfirmedAt = &at
	case OrderProcessing:
		o.ProcessingAt = &at
	case OrderShipped:
		o.ShippedAt = &at
	case OrderDelivered:
		o.DeliveredAt = &at
	case OrderCancelled:
		o.CancelledAt = &at
	}
}

// NewOrderNumber generates a human-readable order number. Uniqueness is
// probabilistic; the orders table carries a unique index as the backstop.
func NewOrderNumber() string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), suffix)
}
