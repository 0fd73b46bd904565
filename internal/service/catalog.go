package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/event"
	"github.com/mirindaq/EcomStore-sub002/internal/repository"
	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
	"github.com/mirindaq/EcomStore-sub002/pkg/slug"
	"github.com/mirindaq/EcomStore-sub002/pkg/validator"
)

// CreateVariantInput is one variant of a product creation request.
type CreateVariantInput struct {
	SKU        string            `json:"sku" validate:"required,min=1,max=64"`
	Name       string            `json:"name" validate:"max=255"`
	Price      float64           `json:"price" validate:"required,gt=0"`
	Attributes map[string]string `json:"attributes"`
	IsActive   *bool             `json:"is_active"`
}

// CreateProductInput is the write-side entry payload for creating a product
// with its variants.
type CreateProductInput struct {
	Name        string               `json:"name" validate:"required,min=2,max=255"`
	Description string               `json:"description" validate:"max=10000"`
	BrandID     *int64               `json:"brand_id" validate:"omitempty,gt=0"`
	CategoryID  *int64               `json:"category_id" validate:"omitempty,gt=0"`
	Status      string               `json:"status" validate:"omitempty,oneof=draft published archived"`
	Variants    []CreateVariantInput `json:"variants" validate:"required,min=1,dive"`
}

// CatalogService owns product creation. It persists the aggregate in one
// transaction, raises the created event inside that transaction, and hands
// the event to the publisher only after the commit succeeds.
type CatalogService struct {
	repo      repository.ProductRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(repo repository.ProductRepository, publisher event.Publisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProduct validates the input, persists the product and its variants
// in a single transaction, and publishes a product.created message after the
// transaction commits. A rolled-back transaction publishes nothing.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}

	product := &domain.Product{
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		BrandID:     input.BrandID,
		CategoryID:  input.CategoryID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, v := range input.Variants {
		active := true
		if v.IsActive != nil {
			active = *v.IsActive
		}
		product.Variants = append(product.Variants, domain.ProductVariant{
			SKU:        v.SKU,
			Name:       v.Name,
			Price:      v.Price,
			Attributes: v.Attributes,
			IsActive:   active,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	// Events raised inside the transaction are released only after commit.
	queue := event.NewQueue()
	err := s.repo.CreateProduct(ctx, product, func() error {
		queue.Raise(event.ProductCreatedEvent{ProductID: product.ID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	queue.Drain(ctx, s.publisher, s.logger)

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.Int("variants", len(product.Variants)),
	)

	return product, nil
}

// DeleteProduct removes the product aggregate in a single transaction and
// publishes a product.deleted message after the transaction commits, so the
// consumer drops the derived document and vectors.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput("product id must be positive")
	}

	queue := event.NewQueue()
	err := s.repo.DeleteProduct(ctx, id, func() error {
		queue.Raise(event.ProductDeletedEvent{ProductID: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	queue.Drain(ctx, s.publisher, s.logger)

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

// GetProduct loads the full product aggregate.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("product id must be positive")
	}
	return s.repo.FindForIndexing(ctx, id)
}
