package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// predecessors lists the statuses an order may move out of to reach the key status.
// An approved payment pays a cancelled order too: the money has been taken.
var predecessors = map[OrderStatus][]OrderStatus{
	OrderStatusPaid:      {OrderStatusPending, OrderStatusCancelled},
	OrderStatusCancelled: {OrderStatusPending},
	OrderStatusRefunded:  {OrderStatusPaid},
}

// Predecessors returns the statuses from which an order may transition to s.
// A nil result means no order can be moved into s.
func (s OrderStatus) Predecessors() []OrderStatus {
	return predecessors[s]
}

type Order struct {
	ID           string      `json:"id" db:"id"`
	CustomerName string      `json:"customerName" db:"customer_name"`
	Status       OrderStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem carries the unit price captured at checkout. Later product price
// changes never touch it.
type OrderItem struct {
	ID             string `json:"id" db:"id"`
	OrderID        string `json:"orderId" db:"order_id"`
	ProductID      string `json:"productId" db:"product_id"`
	ProductName    string `json:"productName" db:"product_name"`
	Quantity       int    `json:"quantity" db:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents" db:"unit_price_cents"`
}

func (i OrderItem) SubtotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

type OrderItemView struct {
	OrderItem
	SubtotalCents      int64  `json:"subtotalCents"`
	UnitPriceFormatted string `json:"unitPriceFormatted"`
	SubtotalFormatted  string `json:"subtotalFormatted"`
}

// OrderView is the read-only composition of an order header and its lines.
type OrderView struct {
	Order
	Items          []OrderItemView `json:"items"`
	TotalCents     int64           `json:"totalCents"`
	TotalFormatted string          `json:"totalFormatted"`
}
