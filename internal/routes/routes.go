package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"koosdoos_back_end/internal/config"
	"koosdoos_back_end/internal/handlers/admin"
	"koosdoos_back_end/internal/handlers/collection"
	"koosdoos_back_end/internal/handlers/order"
	"koosdoos_back_end/internal/handlers/payement"
	"koosdoos_back_end/internal/handlers/product"
	"koosdoos_back_end/internal/handlers/upload"
	"koosdoos_back_end/internal/middleware"
)

// Setup enregistre toutes les routes de l'API.
func Setup(r *gin.Engine, cfg *config.Config) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// --- Catalogue public ---
	api.GET("/products", product.ListProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/:slug", product.GetProduct)
	api.GET("/collections", collection.ListCollections)
	api.GET("/collections/:slug", collection.GetCollection)
	api.GET("/design-templates", product.ListDesignTemplates)

	// --- Panier & checkout ---
	api.POST("/cart/validate", payement.ValidateCart)
	api.POST("/checkout/payfast", payement.PayfastCheckout)
	api.POST("/checkout/create-session", payement.CreateStripeSession)

	// --- Webhooks fournisseurs de paiement ---
	// Payfast : filtre IP source avant tout traitement. Stripe : la
	// signature d'en-tête suffit, pas de filtre IP.
	webhooks := api.Group("/webhooks")
	webhooks.POST("/payfast", middleware.PayfastIPAllowlist(cfg.Payfast.ValidHosts), payement.PayfastITN)
	webhooks.POST("/stripe", payement.StripeWebhook)

	// --- Commandes côté client ---
	api.GET("/orders/:id", order.GetOrder)

	// --- Livraison ---
	api.POST("/shipping/quote", payement.ShippingQuote)
	api.GET("/shipping/track/:waybill", payement.TrackShipment)

	// --- Fichiers de découpe clients ---
	api.POST("/uploads/design", upload.UploadDesign)

	// --- Back-office ---
	api.POST("/admin/login", middleware.LoginRateLimit(), admin.Login)

	adminAPI := api.Group("/admin", middleware.AuthRequired(cfg.Admin.JWTSecret), middleware.RequireAdmin)
	adminAPI.GET("/orders", order.ListOrders)
	adminAPI.GET("/orders/:id", order.AdminGetOrder)
	adminAPI.PUT("/orders/:id/status", order.UpdateStatus)
	adminAPI.POST("/orders/:id/shipment", order.CreateShipment)
	adminAPI.GET("/orders/:id/invoice", order.Invoice)
	adminAPI.PUT("/stock/:variant_id", product.AdjustStock)
	adminAPI.GET("/stock/:variant_id/movements", product.StockMovements)
	adminAPI.POST("/products/reindex", product.Reindex)
	adminAPI.GET("/designs/:ref", upload.GetDesignURL)
}
