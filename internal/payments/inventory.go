package payments

import (
	"context"
	"errors"
	"fmt"
	"log"

	"koosdoos_back_end/internal/models"
)

// Adjuster décrémente le stock d'une commande payée. À appeler
// exactement une fois par commande — la garde d'idempotence du
// réconciliateur s'en charge.
type Adjuster struct {
	Inventory InventoryStore
}

// Apply décrémente chaque ligne, plancher à zéro. Une variante disparue
// (supprimée après la commande) est tolérée : logguée, jamais fatale.
// Pas de chemin de rollback : ajustement best-effort en avant seulement,
// pas un système de réservation transactionnel.
func (a *Adjuster) Apply(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		reason := fmt.Sprintf("commande #%d", order.ID)
		newQty, err := a.Inventory.AdjustStock(ctx, item.VariantID, -item.Quantity, reason)
		if err != nil {
			if errors.Is(err, ErrVariantNotFound) {
				log.Printf("⚠️ Variante %s disparue, stock non ajusté (commande #%d)", item.VariantID, order.ID)
				continue
			}
			log.Printf("❌ Ajustement stock %s échoué: %v", item.VariantID, err)
			continue
		}
		log.Printf("📦 Stock %s: -%d → %d (commande #%d)", item.VariantID, item.Quantity, newQty, order.ID)
	}
}
