package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"koosdoos_back_end/internal/models"
)

func TestAdjusterDecrementsEachLine(t *testing.T) {
	inv := newFakeInventory()
	inv.stock["v1"] = 25
	inv.stock["v2"] = 10

	adjuster := &Adjuster{Inventory: inv}
	adjuster.Apply(context.Background(), &models.Order{
		ID: 42,
		Items: []models.OrderItem{
			{VariantID: "v1", Quantity: 2},
			{VariantID: "v2", Quantity: 3},
		},
	})

	assert.Equal(t, 23, inv.stock["v1"])
	assert.Equal(t, 7, inv.stock["v2"])
}

func TestAdjusterSaturatesAtZero(t *testing.T) {
	// Stock 2, commande de 5 : plancher à zéro, jamais négatif.
	inv := newFakeInventory()
	inv.stock["v1"] = 2

	adjuster := &Adjuster{Inventory: inv}
	adjuster.Apply(context.Background(), &models.Order{
		ID:    1,
		Items: []models.OrderItem{{VariantID: "v1", Quantity: 5}},
	})

	assert.Equal(t, 0, inv.stock["v1"])
}

func TestAdjusterToleratesVanishedVariant(t *testing.T) {
	inv := newFakeInventory()
	inv.stock["v1"] = 8
	inv.absent["ghost"] = true

	adjuster := &Adjuster{Inventory: inv}
	// Ne doit ni paniquer ni bloquer les autres lignes.
	adjuster.Apply(context.Background(), &models.Order{
		ID: 2,
		Items: []models.OrderItem{
			{VariantID: "ghost", Quantity: 1},
			{VariantID: "v1", Quantity: 1},
		},
	})

	assert.Equal(t, 7, inv.stock["v1"])
	assert.Equal(t, 0, inv.calls["ghost"])
}
