package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address est une adresse de livraison structurée (format TCG).
type Address struct {
	Street       string `json:"street" binding:"required"`
	Suburb       string `json:"suburb"`
	City         string `json:"city" binding:"required"`
	Province     string `json:"province" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Parcel décrit un colis (dimensions en cm, poids en kg).
type Parcel struct {
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// ShippingQuote est un devis de livraison pour un service donné.
type ShippingQuote struct {
	ServiceType       string          `json:"service_type"` // standard, express, overnight
	ServiceName       string          `json:"service_name"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDays     int             `json:"estimated_days"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
}

// Shipment est le résultat d'une réservation transporteur.
type Shipment struct {
	Waybill           string    `json:"waybill"`
	TrackingURL       string    `json:"tracking_url"`
	LabelURL          string    `json:"label_url,omitempty"`
	CollectionDate    time.Time `json:"collection_date"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// TrackingEvent est un jalon de suivi d'un envoi.
type TrackingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
}
