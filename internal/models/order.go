package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusBaking    OrderStatus = "baking"
	OrderStatusShipped   OrderStatus = "out_for_delivery"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethodCOD is the only supported payment method.
const PaymentMethodCOD = "COD"

// Customer carries the checkout form fields.
type Customer struct {
	Name         string `json:"name" binding:"required,min=2"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required,min=10,max=15"`
	Address      string `json:"address" binding:"required"`
	City         string `json:"city" binding:"required"`
	Pincode      string `json:"pincode" binding:"required,numeric,len=6"`
	DeliveryDate string `json:"deliveryDate" binding:"required"`
	DeliveryTime string `json:"deliveryTime"`
	Notes        string `json:"notes,omitempty"`
}

// Customization is the per-item personalisation of a cake.
type Customization struct {
	Message  string `json:"message,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// OrderItem is a line of the order payload sent upstream.
type OrderItem struct {
	CakeID         string         `json:"cakeId"`
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	Image          string         `json:"image"`
	SelectedWeight string         `json:"selectedWeight"`
	SelectedFlavor string         `json:"selectedFlavor"`
	Quantity       int            `json:"quantity"`
	Price          float64        `json:"price"`
	Customization  *Customization `json:"customization,omitempty"`
}

// OrderTotals is the monetary breakdown of an order.
type OrderTotals struct {
	Subtotal     float64 `json:"subtotal"`
	ExtraCharges float64 `json:"extraCharges"`
	GrandTotal   float64 `json:"grandTotal"`
}

// OrderRequest is the payload of POST /orders.
type OrderRequest struct {
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	Totals        OrderTotals `json:"totals"`
	ItemCount     int         `json:"itemCount"`
	Status        OrderStatus `json:"status"`
	PaymentMethod string      `json:"paymentMethod"`
}

// Order is an order as returned by the bakery API.
type Order struct {
	ID            string        `json:"_id"`
	Customer      Customer      `json:"customer"`
	Items         []OrderItem   `json:"items"`
	Totals        OrderTotals   `json:"totals"`
	ItemCount     int           `json:"itemCount"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OrderReceipt is the local record kept for post-purchase tracking.
type OrderReceipt struct {
	ID         int       `db:"id" json:"-"`
	OrderID    string    `db:"order_id" json:"orderId"`
	SessionID  string    `db:"session_id" json:"-"`
	Email      string    `db:"email" json:"email"`
	ItemCount  int       `db:"item_count" json:"itemCount"`
	GrandTotal float64   `db:"grand_total" json:"grandTotal"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusBaking,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}
