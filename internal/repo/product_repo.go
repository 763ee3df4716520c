// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Cache population and invalidation are
// deliberately absent here; that protocol lives in services.CatalogService.
//
// Error semantics:
//   - When a product is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//   - DeleteProduct reports absence through its bool return, not an error,
//     so a repeated delete is a no-op rather than a failure.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-catalog-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertProduct inserts a new product row with a generated UUID primary key
// and a UTC creation timestamp, and returns the persisted record.
func InsertProduct(ctx context.Context, db *gorm.DB, name string, price float64, category string) (*domain.Product, error) {
	p := &domain.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     price,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct fetches a single product by id. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProductsPage returns a slice of products ordered by insertion time
// ascending (oldest first), skipping offset rows and returning at most limit.
// An empty page is returned as an empty slice, not nil-with-error.
//
// The caller is responsible for clamping offset and limit to sane bounds.
func ListProductsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountProducts returns the total number of products in the catalog.
func CountProducts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, err
}

// UpdateProductFields applies a merge-patch to the product identified by id:
// only the non-nil fields of patch are written, every other column keeps its
// stored value. If no rows are affected (product missing), it returns
// ErrNotFound. On DB error, the raw error is returned.
//
// Callers must validate the patch against the product invariants before
// calling; the repo applies it verbatim.
func UpdateProductFields(ctx context.Context, db *gorm.DB, id string, patch domain.ProductPatch) error {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if len(fields) == 0 {
		return nil
	}

	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct removes the product identified by id and reports whether a
// row actually existed. Deletion is hard: the row is gone, no tombstone is
// kept. Deleting an absent id returns (false, nil).
func DeleteProduct(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsWellFormedID reports whether id parses as a UUID. Malformed identifiers
// are rejected before any store call so the database never sees them.
func IsWellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
