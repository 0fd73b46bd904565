package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	memengine "github.com/mirindaq/EcomStore-sub002/internal/engine/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/repository/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
	memvector "github.com/mirindaq/EcomStore-sub002/internal/vector/memory"
	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

func int64p(v int64) *int64 { return &v }

func fixtureProduct() domain.Product {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	return domain.Product{
		ID:           42,
		Name:         "Trail Runner",
		Slug:         "trail-runner",
		Description:  "Lightweight trail running shoe",
		BrandID:      int64p(7),
		BrandName:    "Peregrine",
		CategoryID:   int64p(3),
		CategoryName: "Running Shoes",
		CategorySlug: "running-shoes",
		Status:       domain.ProductStatusPublished,
		FilterValues: []string{"waterproof", "lightweight"},
		Images: []domain.ProductImage{
			{ID: 1, ProductID: 42, URL: "https://cdn.example.com/tr-1.jpg", IsPrimary: true},
			{ID: 2, ProductID: 42, URL: "https://cdn.example.com/tr-2.jpg"},
		},
		Variants: []domain.ProductVariant{
			{ID: 5, ProductID: 42, SKU: "TR-42-BLK", Name: "Black 42", Price: 15.5,
				Attributes: map[string]string{"color": "black", "size": "42"}, IsActive: true},
			{ID: 6, ProductID: 42, SKU: "TR-43-BLK", Name: "Black 43", Price: 10.0,
				Attributes: map[string]string{"color": "black", "size": "43"}, IsActive: true},
			{ID: 7, ProductID: 42, SKU: "TR-44-RED", Name: "Red 44", Price: 99.0,
				Attributes: map[string]string{"color": "red", "size": "44"}, IsActive: false},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newTestIndexer(t *testing.T) (*IndexerService, *memory.ProductRepository, *memengine.Engine, *memvector.Store) {
	t.Helper()
	repo := memory.NewProductRepository()
	eng := memengine.New()
	vectors := memvector.NewStore(vector.NewHashingEmbedder(16))
	svc := NewIndexerService(repo, eng, vectors, testLogger())
	return svc, repo, eng, vectors
}

// --- BuildDocument ---

func TestBuildDocument_PriceBoundsOverActiveVariantsOnly(t *testing.T) {
	p := fixtureProduct()

	doc := BuildDocument(&p)

	require.NotNil(t, doc.MinPrice)
	require.NotNil(t, doc.MaxPrice)
	assert.Equal(t, 10.0, *doc.MinPrice)
	assert.Equal(t, 15.5, *doc.MaxPrice)
	assert.LessOrEqual(t, *doc.MinPrice, *doc.MaxPrice)
}

func TestBuildDocument_ZeroActiveVariantsYieldsNilBounds(t *testing.T) {
	p := fixtureProduct()
	for i := range p.Variants {
		p.Variants[i].IsActive = false
	}

	doc := BuildDocument(&p)

	assert.Nil(t, doc.MinPrice)
	assert.Nil(t, doc.MaxPrice)
}

func TestBuildDocument_DeterministicID(t *testing.T) {
	p := fixtureProduct()

	a := BuildDocument(&p)
	b := BuildDocument(&p)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, domain.DocumentID(42), a.ID)
	assert.NotEqual(t, domain.DocumentID(43), a.ID)
	assert.Equal(t, int64(42), a.ProductID)
}

func TestBuildDocument_IdempotentProjection(t *testing.T) {
	p := fixtureProduct()

	first, err := json.Marshal(BuildDocument(&p))
	require.NoError(t, err)
	second, err := json.Marshal(BuildDocument(&p))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second),
		"unchanged source data must produce a byte-identical document")
}

func TestBuildDocument_FlattensCollectionsKeepingDuplicates(t *testing.T) {
	p := fixtureProduct()

	doc := BuildDocument(&p)

	assert.Equal(t, []string{"TR-42-BLK", "TR-43-BLK", "TR-44-RED"}, doc.VariantSkus)
	assert.Equal(t, []string{"Black 42", "Black 43", "Red 44"}, doc.VariantValues)
	// One attribute entry per variant attribute, duplicates preserved.
	assert.Equal(t, []string{"color", "size", "color", "size", "color", "size"}, doc.AttributeNames)
	assert.Equal(t, []string{"black", "42", "black", "43", "red", "44"}, doc.AttributeValues)
	assert.Equal(t, []string{"waterproof", "lightweight"}, doc.FilterValues)
	assert.Equal(t, []string{"https://cdn.example.com/tr-1.jpg", "https://cdn.example.com/tr-2.jpg"}, doc.ProductImages)
}

func TestBuildDocument_CarriesPerVariantPrices(t *testing.T) {
	p := fixtureProduct()

	doc := BuildDocument(&p)

	require.Len(t, doc.Variants, 3)
	assert.Equal(t, int64(5), doc.Variants[0].ID)
	assert.Equal(t, 15.5, doc.Variants[0].Price)
	assert.Equal(t, "TR-43-BLK", doc.Variants[1].SKU)
}

func TestBuildDocument_UsesAggregateTimestamps(t *testing.T) {
	p := fixtureProduct()

	doc := BuildDocument(&p)

	assert.Equal(t, p.CreatedAt, doc.CreatedAt)
	assert.Equal(t, p.UpdatedAt, doc.UpdatedAt)
}

func TestBuildDocument_SearchableTextIncludesDescriptiveFields(t *testing.T) {
	p := fixtureProduct()

	doc := BuildDocument(&p)

	assert.Contains(t, doc.SearchableText, "Trail Runner")
	assert.Contains(t, doc.SearchableText, "Peregrine")
	assert.Contains(t, doc.SearchableText, "Running Shoes")
	assert.Contains(t, doc.SearchableText, "TR-42-BLK")
	assert.Contains(t, doc.SearchableText, "waterproof")
}

// --- IndexProduct ---

func TestIndexProduct_WritesDocumentAndVectors(t *testing.T) {
	svc, repo, eng, vectors := newTestIndexer(t)
	repo.Put(fixtureProduct())

	err := svc.IndexProduct(context.Background(), 42)
	require.NoError(t, err)

	doc := eng.Get(42)
	require.NotNil(t, doc)
	assert.Equal(t, "Trail Runner", doc.Name)

	// One vector record per variant, keyed by variant ID.
	assert.Equal(t, 3, vectors.Len())
	rec := vectors.Record(5)
	require.NotNil(t, rec)
	assert.Equal(t, int64(42), rec.ProductID)
	assert.Equal(t, "TR-42-BLK", rec.SKU)
	assert.NotEmpty(t, rec.Embedding)
}

func TestIndexProduct_ReindexReadsCurrentState(t *testing.T) {
	svc, repo, eng, _ := newTestIndexer(t)
	repo.Put(fixtureProduct())

	require.NoError(t, svc.IndexProduct(context.Background(), 42))

	// The aggregate changes between publish and consume; the consumer must
	// see the current state, never a publish-time snapshot.
	updated := fixtureProduct()
	updated.Name = "Trail Runner v2"
	repo.Put(updated)

	require.NoError(t, svc.IndexProduct(context.Background(), 42))
	assert.Equal(t, "Trail Runner v2", eng.Get(42).Name)
}

func TestIndexProduct_MissingAggregateIsAnError(t *testing.T) {
	svc, _, _, _ := newTestIndexer(t)

	err := svc.IndexProduct(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIndexProduct_VectorFailureFailsWholeOperation(t *testing.T) {
	svc, repo, _, vectors := newTestIndexer(t)
	repo.Put(fixtureProduct())
	vectors.FailWith(errors.New("redis connection refused"))

	err := svc.IndexProduct(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant vectors")
}

// --- DeleteDocument ---

func TestDeleteDocument_RemovesBothDerivedCopies(t *testing.T) {
	svc, repo, eng, vectors := newTestIndexer(t)
	repo.Put(fixtureProduct())
	require.NoError(t, svc.IndexProduct(context.Background(), 42))

	err := svc.DeleteDocument(context.Background(), 42)
	require.NoError(t, err)

	assert.Nil(t, eng.Get(42))
	assert.Equal(t, 0, vectors.Len())
}

func TestDeleteDocument_AbsentDocumentIsNotAnError(t *testing.T) {
	svc, _, _, _ := newTestIndexer(t)

	assert.NoError(t, svc.DeleteDocument(context.Background(), 12345))
}

// --- ReindexAll ---

func TestReindexAll_RebuildsEveryAggregate(t *testing.T) {
	svc, repo, eng, vectors := newTestIndexer(t)

	for i := int64(1); i <= 5; i++ {
		p := fixtureProduct()
		p.ID = i
		for j := range p.Variants {
			p.Variants[j].ID = i*100 + int64(j)
			p.Variants[j].ProductID = i
		}
		repo.Put(p)
	}

	count, err := svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 5, eng.Len())
	assert.Equal(t, 15, vectors.Len())
}

func TestReindexAll_EmptyCatalog(t *testing.T) {
	svc, _, eng, _ := newTestIndexer(t)

	count, err := svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, eng.Len())
}
