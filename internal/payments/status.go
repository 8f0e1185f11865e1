package payments

import (
	"fmt"
	"time"

	"koosdoos_back_end/internal/models"
)

// validTransitions est la source de vérité unique des transitions de
// statut. Le chemin paiement (réconciliateur) et le chemin admin passent
// tous deux par cette table. Pending→Paid et Pending→Cancelled sont les
// seules arêtes que le chemin paiement emprunte.
//
// Note : Paid→Refunded est permis directement (remboursement avant
// expédition) mais Processing→Refunded et Shipped→Refunded ne le sont
// pas — table conservée telle quelle, à ne pas "compléter" sans décision
// produit.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderPaid, models.OrderCancelled},
	models.OrderPaid:       {models.OrderProcessing, models.OrderRefunded, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
	models.OrderDelivered:  {models.OrderRefunded},
	models.OrderCancelled:  {}, // terminal
	models.OrderRefunded:   {}, // terminal
}

// CanTransition indique si le passage from→to est autorisé.
func CanTransition(from, to models.OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition applique un changement de statut demandé par un
// administrateur. Échec total sur transition interdite : aucun champ
// n'est modifié, jamais de coercition vers un statut "proche".
func Transition(order *models.Order, target models.OrderStatus) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: statut %q inconnu", ErrInvalidTransition, target)
	}
	if !CanTransition(order.Status, target) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, order.Status, target)
	}
	order.Status = target
	order.UpdatedAt = time.Now()
	return nil
}
