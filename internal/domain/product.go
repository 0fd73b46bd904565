package domain

import (
	"time"
)

// Product status constants.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product is the authoritative relational representation of a product and
// its variants. The search document and vector records are derived from it
// and may be fully rebuilt from it at any time.
type Product struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	BrandID      *int64           `json:"brand_id,omitempty"`
	BrandName    string           `json:"brand_name,omitempty"`
	CategoryID   *int64           `json:"category_id,omitempty"`
	CategoryName string           `json:"category_name,omitempty"`
	CategorySlug string           `json:"category_slug,omitempty"`
	Status       string           `json:"status"`
	FilterValues []string         `json:"filter_values,omitempty"`
	Images       []ProductImage   `json:"images,omitempty"`
	Variants     []ProductVariant `json:"variants,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductVariant is a purchasable variant of a product (e.g. size, color).
type ProductVariant struct {
	ID         int64             `json:"id"`
	ProductID  int64             `json:"product_id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	Price      float64           `json:"price"`
	Attributes map[string]string `json:"attributes,omitempty"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ProductImage is an image associated with a product.
type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
}

// ActiveVariants returns the product's active variants in declaration order.
func (p *Product) ActiveVariants() []ProductVariant {
	active := make([]ProductVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.IsActive {
			active = append(active, v)
		}
	}
	return active
}

// ValidStatuses returns the set of valid product statuses.
func ValidStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusPublished, ProductStatusArchived}
}

// IsValidStatus checks whether the given status string is a valid product status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
