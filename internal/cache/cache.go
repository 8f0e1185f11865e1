package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"koosdoos_back_end/internal/database"
	"koosdoos_back_end/internal/models"
)

const (
	productListKey = "catalog:products"
	productListTTL = 5 * time.Minute
)

// GetProductList retourne le catalogue mis en cache, ou false si absent.
// Le catalogue change rarement (quelques références), le cache encaisse
// le trafic des pages publiques.
func GetProductList(ctx context.Context) ([]models.Product, bool) {
	data, err := database.Redis.Get(ctx, productListKey).Bytes()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Printf("⚠️ Cache catalogue corrompu, purge: %v", err)
		database.Redis.Del(ctx, productListKey)
		return nil, false
	}
	return products, true
}

func SetProductList(ctx context.Context, products []models.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := database.Redis.Set(ctx, productListKey, data, productListTTL).Err(); err != nil {
		log.Printf("⚠️ Écriture cache catalogue échouée: %v", err)
	}
}

// InvalidateProductList purge le cache après une écriture catalogue
// (ajustement de stock, réindexation).
func InvalidateProductList(ctx context.Context) {
	database.Redis.Del(ctx, productListKey)
}
