package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListDesignTemplates sert la galerie de motifs de découpe proposés
// aux clients (filtrable par catégorie).
func ListDesignTemplates(c *gin.Context) {
	templates, err := catalog.ListDesignTemplates(c.Request.Context(), c.Query("category"))
	if err != nil {
		log.Println("❌ Liste gabarits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture gabarits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
