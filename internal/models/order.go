package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus représente l'état d'une commande dans son cycle de vie.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// IsValid vérifie que le statut fait partie du domaine connu.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Order est la racine d'agrégat du cœur paiement/fulfillment.
// Le total et les prix des lignes sont figés à la création (snapshot d'achat),
// jamais recalculés depuis le catalogue courant.
type Order struct {
	ID                int64           `json:"id"`
	Status            OrderStatus     `json:"status"`
	Provider          string          `json:"provider,omitempty"` // payfast | stripe
	ExternalPaymentID string          `json:"external_payment_id,omitempty"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	CustomerName      string          `json:"customer_name,omitempty"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	Total             decimal.Decimal `json:"total"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	ShippingService   string          `json:"shipping_service,omitempty"` // standard, express, overnight
	ShippingAddress   string          `json:"shipping_address,omitempty"` // adresse encodée en JSON, opaque pour le cœur
	Waybill           string          `json:"waybill,omitempty"`
	TrackingURL       string          `json:"tracking_url,omitempty"`
	Items             []OrderItem     `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderItem est une ligne de commande immuable : le prix est celui
// du moment de l'achat.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	SKU       string          `json:"sku,omitempty"`
	Title     string          `json:"title,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal calcule la somme des lignes (prix snapshot × quantité).
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
