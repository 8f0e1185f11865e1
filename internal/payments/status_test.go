package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koosdoos_back_end/internal/models"
)

var allStatuses = []models.OrderStatus{
	models.OrderPending, models.OrderPaid, models.OrderProcessing,
	models.OrderShipped, models.OrderDelivered, models.OrderCancelled,
	models.OrderRefunded,
}

// allowedPairs recopie la table attendue ; le test parcourt la grille
// 7×7 complète pour vérifier que tout le reste est refusé.
var allowedPairs = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderPaid, models.OrderCancelled},
	models.OrderPaid:       {models.OrderProcessing, models.OrderRefunded, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
	models.OrderDelivered:  {models.OrderRefunded},
	models.OrderCancelled:  {},
	models.OrderRefunded:   {},
}

func pairAllowed(from, to models.OrderStatus) bool {
	for _, t := range allowedPairs[from] {
		if t == to {
			return true
		}
	}
	return false
}

func TestTransitionTableComplete(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			order := &models.Order{ID: 1, Status: from}
			err := Transition(order, to)

			if pairAllowed(from, to) {
				require.NoError(t, err, "%s → %s devrait être permis", from, to)
				assert.Equal(t, to, order.Status)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition, "%s → %s devrait être refusé", from, to)
				assert.Equal(t, from, order.Status, "échec total : aucun champ modifié")
			}
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	order := &models.Order{Status: models.OrderPending}
	err := Transition(order, models.OrderStatus("livrée-par-pigeon"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestShippedScenario(t *testing.T) {
	// Commande expédiée : retour en Processing refusé, Delivered accepté.
	order := &models.Order{ID: 12, Status: models.OrderShipped}

	err := Transition(order, models.OrderProcessing)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.OrderShipped, order.Status)

	require.NoError(t, Transition(order, models.OrderDelivered))
	assert.Equal(t, models.OrderDelivered, order.Status)
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.OrderCancelled, models.OrderRefunded} {
		for _, to := range allStatuses {
			assert.False(t, CanTransition(terminal, to), "%s est terminal", terminal)
		}
	}
}
