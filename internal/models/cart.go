package models

import "github.com/shopspring/decimal"

// CartItem est une ligne de panier telle qu'envoyée par le client.
// Le prix n'est jamais repris du client : il est re-validé côté serveur.
type CartItem struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ValidatedCartItem est le résultat de la validation d'une ligne
// contre le catalogue courant.
type ValidatedCartItem struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	Quantity     int             `json:"quantity"`
	SKU          string          `json:"sku"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Available    bool            `json:"available"`
	AvailableQty int             `json:"available_qty"`
}

// CustomerInfo regroupe les coordonnées client fournies au checkout.
// Tous les champs sont optionnels : le prestataire de paiement peut
// être le premier à nous les fournir.
type CustomerInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}
