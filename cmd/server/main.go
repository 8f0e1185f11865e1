package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/database"
	adminhandler "koosdoos_back_end/internal/handlers/admin"
	"koosdoos_back_end/internal/handlers/collection"
	orderhandler "koosdoos_back_end/internal/handlers/order"
	"koosdoos_back_end/internal/handlers/payement"
	producthandler "koosdoos_back_end/internal/handlers/product"
	"koosdoos_back_end/internal/payments"
	"koosdoos_back_end/internal/routes"
	"koosdoos_back_end/internal/shipping"
	"koosdoos_back_end/internal/store"
	"koosdoos_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	database.ConnectDatabases()
	defer database.CloseScylla()

	stripe.Key = cfg.Stripe.SecretKey

	// --- Stores ---
	orders := store.NewMongoOrderStore(database.MongoOrdersDB)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := orders.EnsureIndexes(ctx); err != nil {
		log.Fatalf("❌ Index MongoDB: %v", err)
	}
	cancel()

	productsSession, err := database.GetProductsSession()
	if err != nil {
		log.Fatalf("❌ Session catalogue: %v", err)
	}
	catalog := store.NewScyllaCatalog(productsSession)
	locks := store.NewRedisLocker(database.Redis)

	// --- Composants métier ---
	mailer := utils.NewMailer(cfg.SMTP)
	courier := shipping.NewClient(cfg.TCG)

	builder := &payments.Builder{
		Catalog: catalog,
		Orders:  orders,
		Payfast: cfg.Payfast,
		Stripe:  cfg.Stripe,
	}
	reconciler := &payments.Reconciler{
		Orders:    orders,
		Inventory: &payments.Adjuster{Inventory: catalog},
		Locks:     locks,
		Mail:      mailer,
	}

	// --- Handlers ---
	payement.Init(builder, reconciler, courier, cfg.Stripe.WebhookSecret)
	orderhandler.Init(orders, courier, mailer)
	producthandler.Init(catalog)
	collection.Init(catalog)
	adminhandler.Init(cfg.Admin)

	// --- Serveur HTTP ---
	r := gin.Default()
	routes.Setup(r, cfg)

	log.Printf("🚀 Serveur KoosDoos démarré sur le port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Serveur arrêté: %v", err)
	}
}
