package order

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/shipping"
	"koosdoos_back_end/internal/utils"
)

// Store est la surface de persistance dont le back-office a besoin
// (implémentée par store.MongoOrderStore).
type Store interface {
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	List(ctx context.Context, status models.OrderStatus, email string, limit, offset int64) ([]*models.Order, error)
}

// Dépendances du package, posées par Init au démarrage.
var (
	orders  Store
	courier *shipping.Client
	mailer  *utils.Mailer
)

func Init(s Store, tcg *shipping.Client, m *utils.Mailer) {
	orders = s
	courier = tcg
	mailer = m
}

// GetOrder sert la page de confirmation côté client. Pas de comptes
// clients : l'e-mail de commande fait office de preuve de possession.
func GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	order, err := orders.FindByID(c.Request.Context(), id)
	if errors.Is(err, payments.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	email := c.Query("email")
	if email == "" || !strings.EqualFold(email, order.CustomerEmail) {
		// Ne pas distinguer "mauvais e-mail" de "commande inconnue".
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, order)
}
