package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID `json:"id" db:"product_id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Subtitle    string     `json:"subtitle" db:"subtitle"`
	Description string     `json:"description" db:"description"`
	Material    string     `json:"material" db:"material"`
	Finish      string     `json:"finish" db:"finish"`
	SeatsMin    int        `json:"seats_min" db:"seats_min"`
	SeatsMax    int        `json:"seats_max" db:"seats_max"`
	Badges      []string   `json:"badges" db:"badges"`
	ImageURLs   []string   `json:"image_urls" db:"image_urls"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	Variants    []Variant  `json:"variants,omitempty"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Variant porte le prix courant et le stock. InventoryQty ne descend
// jamais sous zéro : la décrémentation est saturante.
type Variant struct {
	ID           gocql.UUID `json:"id" db:"variant_id"`
	ProductID    gocql.UUID `json:"product_id" db:"product_id"`
	SKU          string     `json:"sku" db:"sku"`
	Price        float64    `json:"price" db:"price"`
	CompareAt    float64    `json:"compare_at_price,omitempty" db:"compare_at_price"`
	InventoryQty int        `json:"inventory_qty" db:"inventory_qty"`
	Weight       float64    `json:"weight" db:"weight"` // kg
	DimensionsMM string     `json:"dimensions_mm,omitempty" db:"dimensions_mm"`
}

// StockMovement trace chaque ajustement d'inventaire (audit).
type StockMovement struct {
	ID        gocql.UUID `json:"id"`
	VariantID gocql.UUID `json:"variant_id"`
	Type      string     `json:"type"` // "order", "restock", "adjustment"
	Quantity  int        `json:"quantity"`
	PrevStock int        `json:"prev_stock"`
	NewStock  int        `json:"new_stock"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}

type Collection struct {
	ID          gocql.UUID `json:"id" db:"collection_id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	ProductIDs  []string   `json:"product_ids" db:"product_ids"`
	SortOrder   int        `json:"sort_order" db:"sort_order"`
}

type DesignTemplate struct {
	ID         gocql.UUID `json:"id" db:"template_id"`
	Name       string     `json:"name" db:"name"`
	Category   string     `json:"category" db:"category"`
	PreviewURL string     `json:"preview_url" db:"preview_url"`
	FileURL    string     `json:"file_url" db:"file_url"`
}
