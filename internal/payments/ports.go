package payments

import (
	"context"
	"errors"

	"koosdoos_back_end/internal/models"
)

// Erreurs sentinelles du cœur paiement. Les échecs d'authenticité
// (signature, IP source) sont gérés à la frontière HTTP et n'apparaissent
// pas ici : ils ne doivent jamais atteindre les stores.
var (
	ErrMalformedPayload  = errors.New("notification illisible : champs requis absents")
	ErrOrderNotFound     = errors.New("commande introuvable")
	ErrAmountMismatch    = errors.New("montant de la notification différent du total de la commande")
	ErrInvalidTransition = errors.New("transition de statut non autorisée")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrInvalidLine       = errors.New("ligne de panier invalide")
	ErrVariantNotFound   = errors.New("variante introuvable")
)

// OrderStore persiste les commandes. Save doit écrire la commande entière ;
// l'atomicité de la séquence lecture-décision-écriture est garantie par
// l'OrderLocker, pas par le store.
type OrderStore interface {
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByExternalPaymentID(ctx context.Context, externalID string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
}

// CatalogLookup expose la lecture du catalogue nécessaire au checkout.
type CatalogLookup interface {
	GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// InventoryStore ajuste le stock d'une variante. La décrémentation est
// saturante : le stock ne descend jamais sous zéro. Renvoie le stock
// résultant, ou ErrVariantNotFound si la variante a disparu.
type InventoryStore interface {
	AdjustStock(ctx context.Context, variantID string, delta int, reason string) (int, error)
}

// OrderLocker sérialise le traitement par commande : deux livraisons
// concurrentes de la même notification ne doivent pas passer toutes les
// deux la garde d'idempotence.
type OrderLocker interface {
	Lock(ctx context.Context, orderID int64) (func(), error)
}

// ConfirmationSender envoie la confirmation de commande (e-mail).
// Optionnel : un envoi raté n'invalide jamais la réconciliation.
type ConfirmationSender interface {
	SendOrderConfirmation(order *models.Order) error
}
