package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// CreateProduct inserts a product and its variants in one transaction. The
// inTx callback runs after the inserts and before commit; a callback error
// rolls the whole transaction back.
func (r *ProductRepository) CreateProduct(ctx context.Context, p *domain.Product, inTx func() error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (name, slug, description, brand_id, category_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.BrandID,
		p.CategoryID,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		v.ProductID = p.ID
		v.CreatedAt = now
		v.UpdatedAt = now

		attrsJSON, err := json.Marshal(v.Attributes)
		if err != nil {
			return fmt.Errorf("marshal variant attributes: %w", err)
		}

		variantQuery := `
			INSERT INTO product_variants (product_id, sku, name, price, attributes, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`

		err = tx.QueryRow(ctx, variantQuery,
			v.ProductID,
			v.SKU,
			v.Name,
			v.Price,
			attrsJSON,
			v.IsActive,
			v.CreatedAt,
			v.UpdatedAt,
		).Scan(&v.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("variant", "sku", v.SKU)
			}
			return fmt.Errorf("insert variant: %w", err)
		}
	}

	if inTx != nil {
		if err := inTx(); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// DeleteProduct removes the product row and its dependent rows in one
// transaction. The inTx callback runs after the deletes and before commit.
func (r *ProductRepository) DeleteProduct(ctx context.Context, id int64, inTx func() error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete images: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}

	if inTx != nil {
		if err := inTx(); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// FindForIndexing loads the full aggregate: product row joined to brand and
// category, plus variants, images, and category filter values.
func (r *ProductRepository) FindForIndexing(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.slug, p.description,
		       p.brand_id, COALESCE(b.name, ''),
		       p.category_id, COALESCE(c.name, ''), COALESCE(c.slug, ''),
		       p.status, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.BrandID,
		&p.BrandName,
		&p.CategoryID,
		&p.CategoryName,
		&p.CategorySlug,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("query product: %w", err)
	}

	if err := r.loadVariants(ctx, &p); err != nil {
		return nil, err
	}
	if err := r.loadImages(ctx, &p); err != nil {
		return nil, err
	}
	if err := r.loadFilterValues(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// ListForIndexing pages through full aggregates by ascending ID for the
// manual reindex job.
func (r *ProductRepository) ListForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id
		FROM products
		WHERE id > $1
		ORDER BY id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.FindForIndexing(ctx, id)
		if err != nil {
			// A product deleted mid-scan is not a reindex failure.
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		products = append(products, *p)
	}

	return products, nil
}

func (r *ProductRepository) loadVariants(ctx context.Context, p *domain.Product) error {
	query := `
		SELECT id, product_id, sku, name, price, attributes, is_active, created_at, updated_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v         domain.ProductVariant
			attrsJSON []byte
		)
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.SKU,
			&v.Name,
			&v.Price,
			&attrsJSON,
			&v.IsActive,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan variant row: %w", err)
		}

		if attrsJSON != nil {
			if err := json.Unmarshal(attrsJSON, &v.Attributes); err != nil {
				return fmt.Errorf("unmarshal variant attributes: %w", err)
			}
		}

		p.Variants = append(p.Variants, v)
	}

	return rows.Err()
}

func (r *ProductRepository) loadImages(ctx context.Context, p *domain.Product) error {
	query := `
		SELECT id, product_id, url, alt_text, sort_order, is_primary
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order, id`

	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(
			&img.ID,
			&img.ProductID,
			&img.URL,
			&img.AltText,
			&img.SortOrder,
			&img.IsPrimary,
		); err != nil {
			return fmt.Errorf("scan image row: %w", err)
		}
		p.Images = append(p.Images, img)
	}

	return rows.Err()
}

func (r *ProductRepository) loadFilterValues(ctx context.Context, p *domain.Product) error {
	if p.CategoryID == nil {
		return nil
	}

	query := `
		SELECT value
		FROM category_filter_values
		WHERE category_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, *p.CategoryID)
	if err != nil {
		return fmt.Errorf("query filter values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("scan filter value: %w", err)
		}
		p.FilterValues = append(p.FilterValues, value)
	}

	return rows.Err()
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
