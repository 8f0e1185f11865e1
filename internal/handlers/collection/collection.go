package collection

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/store"
)

var catalog *store.ScyllaCatalog

func Init(c *store.ScyllaCatalog) {
	catalog = c
}

// ListCollections sert les collections de la boutique (gammes de
// produits mises en avant sur la page d'accueil).
func ListCollections(c *gin.Context) {
	collections, err := catalog.ListCollections(c.Request.Context())
	if err != nil {
		log.Println("❌ Liste collections:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture collections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// GetCollection sert une collection par slug (page de gamme).
func GetCollection(c *gin.Context) {
	col, err := catalog.GetCollectionBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, store.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Lecture collection:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture collection"})
		return
	}
	c.JSON(http.StatusOK, col)
}
