package upload

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/services"
)

// Taille maximale d'un fichier de découpe : 10 Mo.
const maxDesignFileSize = 10 << 20

// UploadDesign reçoit le fichier de découpe personnalisé d'un client
// (DXF, SVG ou PNG) et le stocke dans MinIO.
func UploadDesign(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant (champ 'file')"})
		return
	}
	if file.Size > maxDesignFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Fichier trop volumineux (10 Mo max)"})
		return
	}

	objectName, err := services.UploadDesignFile(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"design_ref": objectName})
}

// GetDesignURL retourne une URL signée temporaire vers un fichier de
// découpe (back-office atelier).
func GetDesignURL(c *gin.Context) {
	ref := c.Param("ref")
	url, err := services.DesignFileURL(c.Request.Context(), ref, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fichier introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in_seconds": 900})
}
