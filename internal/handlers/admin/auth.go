package admin

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/utils"
)

var cfg config.AdminConfig

func Init(adminCfg config.AdminConfig) {
	cfg = adminCfg
}

// Login authentifie l'administrateur unique du back-office (compte
// configuré en variables d'environnement, pas de table utilisateurs).
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "E-mail et mot de passe requis"})
		return
	}

	if cfg.Email == "" || cfg.PasswordHash == "" {
		log.Println("⚠️ Compte admin non configuré (ADMIN_EMAIL / ADMIN_PASSWORD_HASH)")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Back-office non configuré"})
		return
	}

	ok, err := utils.VerifyPassword(req.Password, cfg.PasswordHash)
	if err != nil || !ok || !strings.EqualFold(req.Email, cfg.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	token, err := utils.GenerateAdminJWT(cfg.Email, cfg.JWTSecret)
	if err != nil {
		log.Println("❌ Génération JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("🔐 Connexion admin : %s", cfg.Email)
	c.JSON(http.StatusOK, gin.H{"token": token, "email": cfg.Email})
}
