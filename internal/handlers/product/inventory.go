package product

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/cache"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/services"
)

// AdjustStock applique un delta manuel au stock d'une variante
// (réception atelier, casse, correction d'inventaire). Le plancher à
// zéro s'applique comme pour les décréments de commande.
func AdjustStock(c *gin.Context) {
	var req struct {
		Delta  int    `json:"delta" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delta ou raison manquants"})
		return
	}

	variantID := c.Param("variant_id")
	newQty, err := catalog.AdjustStock(c.Request.Context(), variantID, req.Delta, req.Reason)
	if errors.Is(err, payments.ErrVariantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Ajustement stock:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajustement stock"})
		return
	}

	cache.InvalidateProductList(c.Request.Context())
	log.Printf("📦 Stock variante %s ajusté de %+d → %d (%s, admin: %s)",
		variantID, req.Delta, newQty, req.Reason, c.GetString("email"))
	c.JSON(http.StatusOK, gin.H{"variant_id": variantID, "inventory_qty": newQty})
}

// StockMovements liste l'historique d'ajustements d'une variante.
func StockMovements(c *gin.Context) {
	variantID := c.Param("variant_id")
	movements, err := catalog.StockMovements(c.Request.Context(), variantID, 100)
	if errors.Is(err, payments.ErrVariantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variante introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Mouvements de stock:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture mouvements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant_id": variantID, "movements": movements})
}

// Reindex reconstruit l'index de recherche depuis le catalogue.
func Reindex(c *gin.Context) {
	products, err := catalog.ListProducts(c.Request.Context())
	if err != nil {
		log.Println("❌ Lecture catalogue pour réindexation:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	count := services.ReindexCatalog(products)
	cache.InvalidateProductList(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"indexed": count})
}
