package models

import "github.com/shopspring/decimal"

// Fournisseurs de paiement supportés.
const (
	ProviderPayfast = "payfast"
	ProviderStripe  = "stripe"
)

// PaymentEventStatus est le vocabulaire de statut neutre vers lequel
// les deux fournisseurs sont normalisés.
type PaymentEventStatus string

const (
	PaymentComplete  PaymentEventStatus = "complete"
	PaymentFailed    PaymentEventStatus = "failed"
	PaymentCancelled PaymentEventStatus = "cancelled"
	PaymentUnknown   PaymentEventStatus = "unknown"
)

// PaymentEvent est la vue normalisée d'une notification de paiement,
// quelle que soit sa forme d'origine (form-POST signé ou événement JSON).
// Éphémère : jamais persisté tel quel.
type PaymentEvent struct {
	Provider          string             `json:"provider"`
	OrderReference    string             `json:"order_reference"`
	ExternalPaymentID string             `json:"external_payment_id"`
	Amount            decimal.Decimal    `json:"amount"`
	Status            PaymentEventStatus `json:"status"`
	CustomerEmail     string             `json:"customer_email,omitempty"`
	CustomerName      string             `json:"customer_name,omitempty"`
	CustomerPhone     string             `json:"customer_phone,omitempty"`
	CartItems         []CartItem         `json:"cart_items,omitempty"`
	Raw               string             `json:"-"` // payload brut pour audit/log
}
