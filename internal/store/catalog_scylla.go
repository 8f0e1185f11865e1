package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gocql/gocql"

	"koosdoos_back_end/internal/models"
	"koosdoos_back_end/internal/payments"
)

// ErrProductNotFound signale un slug de produit ou de collection
// inconnu du catalogue.
var ErrProductNotFound = errors.New("produit introuvable")

// ScyllaCatalog lit le catalogue (produits, variantes, collections) et
// porte les ajustements d'inventaire. Une seule session, keyspace
// products.
type ScyllaCatalog struct {
	Session *gocql.Session
}

func NewScyllaCatalog(session *gocql.Session) *ScyllaCatalog {
	return &ScyllaCatalog{Session: session}
}

func (c *ScyllaCatalog) GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error) {
	vid, err := gocql.ParseUUID(variantID)
	if err != nil {
		return nil, payments.ErrVariantNotFound
	}

	var v models.Variant
	err = c.Session.Query(`
		SELECT variant_id, product_id, sku, price, compare_at_price,
		       inventory_qty, weight, dimensions_mm
		FROM variants WHERE variant_id = ?`, vid).
		WithContext(ctx).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.CompareAt,
			&v.InventoryQty, &v.Weight, &v.DimensionsMM)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, payments.ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture variante %s: %w", variantID, err)
	}

	// La variante doit appartenir au produit annoncé par le client.
	if productID != "" && v.ProductID.String() != productID {
		return nil, payments.ErrVariantNotFound
	}
	return &v, nil
}

func (c *ScyllaCatalog) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	pid, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var p models.Product
	err = c.Session.Query(`
		SELECT product_id, slug, title, subtitle, description, material,
		       finish, seats_min, seats_max, badges, image_urls, is_active,
		       created_at, updated_at
		FROM products WHERE product_id = ?`, pid).
		WithContext(ctx).
		Scan(&p.ID, &p.Slug, &p.Title, &p.Subtitle, &p.Description, &p.Material,
			&p.Finish, &p.SeatsMin, &p.SeatsMax, &p.Badges, &p.ImageURLs,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", productID, err)
	}
	return &p, nil
}

// GetProductBySlug sert les pages produit publiques, variantes incluses.
func (c *ScyllaCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var pid gocql.UUID
	err := c.Session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, slug).
		WithContext(ctx).Scan(&pid)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("résolution slug %s: %w", slug, err)
	}

	product, err := c.GetProduct(ctx, pid.String())
	if err != nil {
		return nil, err
	}
	product.Variants, err = c.VariantsOf(ctx, pid)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (c *ScyllaCatalog) VariantsOf(ctx context.Context, productID gocql.UUID) ([]models.Variant, error) {
	iter := c.Session.Query(`
		SELECT variant_id, product_id, sku, price, compare_at_price,
		       inventory_qty, weight, dimensions_mm
		FROM variants WHERE product_id = ?`, productID).
		WithContext(ctx).Iter()

	var variants []models.Variant
	var v models.Variant
	for iter.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.CompareAt,
		&v.InventoryQty, &v.Weight, &v.DimensionsMM) {
		variants = append(variants, v)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("variantes du produit %s: %w", productID, err)
	}
	return variants, nil
}

// ListProducts retourne les produits actifs. Le catalogue est petit
// (quelques dizaines de références), un scan complet suffit.
func (c *ScyllaCatalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := c.Session.Query(`
		SELECT product_id, slug, title, subtitle, description, material,
		       finish, seats_min, seats_max, badges, image_urls, is_active,
		       created_at, updated_at
		FROM products`).
		WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Slug, &p.Title, &p.Subtitle, &p.Description, &p.Material,
		&p.Finish, &p.SeatsMin, &p.SeatsMax, &p.Badges, &p.ImageURLs,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if !p.IsActive {
			continue
		}
		cp := p
		products = append(products, cp)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste produits: %w", err)
	}

	for i := range products {
		variants, err := c.VariantsOf(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Variants = variants
	}
	return products, nil
}

func (c *ScyllaCatalog) ListCollections(ctx context.Context) ([]models.Collection, error) {
	iter := c.Session.Query(`
		SELECT collection_id, slug, title, description, image_url,
		       product_ids, sort_order
		FROM collections`).
		WithContext(ctx).Iter()

	var collections []models.Collection
	var col models.Collection
	for iter.Scan(&col.ID, &col.Slug, &col.Title, &col.Description,
		&col.ImageURL, &col.ProductIDs, &col.SortOrder) {
		collections = append(collections, col)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste collections: %w", err)
	}
	return collections, nil
}

// GetCollectionBySlug cherche une collection par son slug. La table est
// petite (quelques gammes), le filtrage côté serveur suffit.
func (c *ScyllaCatalog) GetCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var col models.Collection
	err := c.Session.Query(`
		SELECT collection_id, slug, title, description, image_url,
		       product_ids, sort_order
		FROM collections WHERE slug = ? ALLOW FILTERING`, slug).
		WithContext(ctx).
		Scan(&col.ID, &col.Slug, &col.Title, &col.Description,
			&col.ImageURL, &col.ProductIDs, &col.SortOrder)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", slug, err)
	}
	return &col, nil
}

func (c *ScyllaCatalog) ListDesignTemplates(ctx context.Context, category string) ([]models.DesignTemplate, error) {
	q := `SELECT template_id, name, category, preview_url, file_url FROM design_templates`
	var iter *gocql.Iter
	if category != "" {
		iter = c.Session.Query(q+` WHERE category = ? ALLOW FILTERING`, category).WithContext(ctx).Iter()
	} else {
		iter = c.Session.Query(q).WithContext(ctx).Iter()
	}

	var templates []models.DesignTemplate
	var t models.DesignTemplate
	for iter.Scan(&t.ID, &t.Name, &t.Category, &t.PreviewURL, &t.FileURL) {
		templates = append(templates, t)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste gabarits: %w", err)
	}
	return templates, nil
}

// AdjustStock applique un delta au stock d'une variante, plancher à
// zéro. L'écriture passe par une transaction légère (IF inventory_qty
// = lu) et réessaie en cas de course : deux webhooks simultanés ne
// perdent jamais de décrément.
func (c *ScyllaCatalog) AdjustStock(ctx context.Context, variantID string, delta int, reason string) (int, error) {
	vid, err := gocql.ParseUUID(variantID)
	if err != nil {
		return 0, payments.ErrVariantNotFound
	}

	for attempt := 0; attempt < 5; attempt++ {
		var current int
		err := c.Session.Query(`SELECT inventory_qty FROM variants WHERE variant_id = ?`, vid).
			WithContext(ctx).Scan(&current)
		if errors.Is(err, gocql.ErrNotFound) {
			return 0, payments.ErrVariantNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("lecture stock %s: %w", variantID, err)
		}

		newQty := current + delta
		if newQty < 0 {
			newQty = 0
		}

		applied, err := c.Session.Query(`
			UPDATE variants SET inventory_qty = ?
			WHERE variant_id = ? IF inventory_qty = ?`,
			newQty, vid, current).
			WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return 0, fmt.Errorf("écriture stock %s: %w", variantID, err)
		}
		if !applied {
			continue // quelqu'un est passé avant nous, on relit
		}

		c.recordMovement(ctx, vid, delta, current, newQty, reason)
		return newQty, nil
	}
	return 0, fmt.Errorf("stock %s: trop de conflits d'écriture", variantID)
}

// StockMovements retourne l'historique d'ajustements d'une variante,
// le plus récent d'abord.
func (c *ScyllaCatalog) StockMovements(ctx context.Context, variantID string, limit int) ([]models.StockMovement, error) {
	vid, err := gocql.ParseUUID(variantID)
	if err != nil {
		return nil, payments.ErrVariantNotFound
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	iter := c.Session.Query(`
		SELECT id, variant_id, type, quantity, prev_stock, new_stock, reason, created_at
		FROM stock_movements WHERE variant_id = ? LIMIT ? ALLOW FILTERING`, vid, limit).
		WithContext(ctx).Iter()

	var movements []models.StockMovement
	var m models.StockMovement
	for iter.Scan(&m.ID, &m.VariantID, &m.Type, &m.Quantity, &m.PrevStock, &m.NewStock, &m.Reason, &m.CreatedAt) {
		movements = append(movements, m)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("mouvements de stock %s: %w", variantID, err)
	}

	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	return movements, nil
}

// recordMovement trace l'ajustement. L'audit ne doit jamais faire
// échouer l'opération de stock elle-même.
func (c *ScyllaCatalog) recordMovement(ctx context.Context, variantID gocql.UUID, delta, prev, next int, reason string) {
	movementType := "adjustment"
	if delta < 0 {
		movementType = "order"
	} else if delta > 0 {
		movementType = "restock"
	}

	err := c.Session.Query(`
		INSERT INTO stock_movements
			(id, variant_id, type, quantity, prev_stock, new_stock, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		gocql.TimeUUID(), variantID, movementType, delta, prev, next, reason, time.Now()).
		WithContext(ctx).Exec()
	if err != nil {
		log.Printf("⚠️ Mouvement de stock non tracé (%s, %+d): %v", variantID, delta, err)
	}
}
