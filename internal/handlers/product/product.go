package product

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/cache"
	"koosdoos_back_end/internal/services"
	"koosdoos_back_end/internal/store"
)

var catalog *store.ScyllaCatalog

func Init(c *store.ScyllaCatalog) {
	catalog = c
}

// ListProducts sert le catalogue public, via le cache Redis.
func ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if products, ok := cache.GetProductList(ctx); ok {
		c.JSON(http.StatusOK, gin.H{"products": products, "cached": true})
		return
	}

	products, err := catalog.ListProducts(ctx)
	if err != nil {
		log.Println("❌ Liste produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	cache.SetProductList(ctx, products)
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct sert une page produit par slug, variantes incluses.
func GetProduct(c *gin.Context) {
	product, err := catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, store.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Lecture produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts interroge l'index Elasticsearch.
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		log.Println("❌ Recherche:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
