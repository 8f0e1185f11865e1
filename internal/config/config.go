package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// PayfastConfig regroupe les secrets et URLs du fournisseur form-POST signé.
type PayfastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	// ValidHosts : hôtes publiés par Payfast dont les IPs sont les seules
	// sources autorisées pour les notifications ITN.
	ValidHosts []string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// TCGConfig configure le client The Courier Guy. En mode Sandbox le
// client renvoie des données simulées réalistes (dev/tests).
type TCGConfig struct {
	APIKey            string
	BaseURL           string
	Sandbox           bool
	WarehouseStreet   string
	WarehouseSuburb   string
	WarehouseCity     string
	WarehouseProvince string
	WarehousePostal   string
}

type AdminConfig struct {
	Email        string
	PasswordHash string // argon2id encodé ($argon2id$...)
	JWTSecret    string
}

// Config est passée explicitement aux composants à leur construction :
// pas de lecture ambiante de l'environnement dans le cœur métier,
// pour pouvoir tester avec des secrets de fixture.
type Config struct {
	Port        string
	FrontendURL string
	Payfast     PayfastConfig
	Stripe      StripeConfig
	SMTP        SMTPConfig
	TCG         TCGConfig
	Admin       AdminConfig
}

// Load charge .env puis construit la configuration depuis l'environnement.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Payfast: PayfastConfig{
			MerchantID:  os.Getenv("PAYFAST_MERCHANT_ID"),
			MerchantKey: os.Getenv("PAYFAST_MERCHANT_KEY"),
			Passphrase:  os.Getenv("PAYFAST_PASSPHRASE"),
			ProcessURL:  getEnv("PAYFAST_PROCESS_URL", "https://sandbox.payfast.co.za/eng/process"),
			ReturnURL:   getEnv("PAYFAST_RETURN_URL", "http://localhost:3000/order-confirmation"),
			CancelURL:   getEnv("PAYFAST_CANCEL_URL", "http://localhost:3000/cart"),
			NotifyURL:   getEnv("PAYFAST_NOTIFY_URL", "http://localhost:8080/api/v1/webhooks/payfast"),
			ValidHosts:  splitEnv("PAYFAST_VALID_HOSTS", "www.payfast.co.za,sandbox.payfast.co.za,w1w.payfast.co.za,w2w.payfast.co.za"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/order-confirmation?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/cart"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@koosdoos.co.za"),
		},
		TCG: TCGConfig{
			APIKey:            os.Getenv("TCG_API_KEY"),
			BaseURL:           getEnv("TCG_BASE_URL", "https://api.thecourierguy.co.za/v1"),
			Sandbox:           getEnv("TCG_SANDBOX", "true") == "true",
			WarehouseStreet:   getEnv("WAREHOUSE_ADDRESS", "123 Industrial Road"),
			WarehouseSuburb:   getEnv("WAREHOUSE_SUBURB", "Silverton"),
			WarehouseCity:     getEnv("WAREHOUSE_CITY", "Pretoria"),
			WarehouseProvince: getEnv("WAREHOUSE_PROVINCE", "Gauteng"),
			WarehousePostal:   getEnv("WAREHOUSE_POSTAL_CODE", "0184"),
		},
		Admin: AdminConfig{
			Email:        os.Getenv("ADMIN_EMAIL"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		},
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
