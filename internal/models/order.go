package models

import "time"

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodKaspi PaymentMethod = "kaspi"
	PaymentMethodCash  PaymentMethod = "cash"
)

// OrderForm carries the delivery and payment details collected from the
// customer. Phone and address are mandatory; everything else has defaults.
type OrderForm struct {
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	DeliveryDate  string        `json:"deliveryDate"`
	DeliveryTime  string        `json:"deliveryTime"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Comment       string        `json:"comment,omitempty"`
}

// Order is a submitted order: the form details plus a generated number, the
// snapshotted cart and a status.
type Order struct {
	OrderForm

	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Items     []CartItem  `json:"items"`
	Total     int         `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderConfirmation is what the submission flow hands back to the chat layer.
type OrderConfirmation struct {
	Order       *Order `json:"order"`
	Message     string `json:"message"`
	PaymentInfo string `json:"paymentInfo"`
	TrackingURL string `json:"trackingUrl"`
}
