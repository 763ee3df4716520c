// Package services – CatalogService
//
// This file implements CatalogService, the application-level component that
// owns product CRUD and the cache-aside protocol for paginated list reads.
// It validates inputs against the product invariants, persists through the
// product store, and keeps the Redis list cache coherent: list pages are
// cached under a per-page key for a fixed TTL, and any successful write
// evicts the whole list namespace because a single insert/update/delete can
// shift membership across every page boundary.
//
// The cache is a performance optimization, never a correctness dependency:
// a failed cache read degrades to a store read, and a failed population or
// invalidation is logged and swallowed. The result is bounded staleness — a
// list page may be up to TTL seconds behind the store, never older.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include product identifiers and pagination parameters where applicable.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-catalog-backend/internal/cache"
	"github.com/tbourn/go-catalog-backend/internal/domain"
	"github.com/tbourn/go-catalog-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// listKeyPrefix namespaces every cached list page. Invalidation deletes
	// the whole prefix, which is what makes coarse eviction coarse.
	listKeyPrefix = "products:list:"

	// DefaultCacheTTL bounds list staleness when no TTL is configured.
	DefaultCacheTTL = 300 * time.Second

	defaultPageSize = 10
	maxPageSize     = 100
	maxNameRunes    = 100
)

// ProductStore defines the persistence contract required by CatalogService.
// Implementations are responsible for durability of product records; the
// production implementation is the repo package over GORM.
type ProductStore interface {
	// Insert persists a new product and returns it with its assigned id.
	Insert(ctx context.Context, db *gorm.DB, name string, price float64, category string) (*domain.Product, error)

	// Get fetches a product by id, returning gorm.ErrRecordNotFound if absent.
	Get(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error)

	// ListPage returns products in insertion order, skipping offset rows and
	// returning at most limit.
	ListPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, error)

	// UpdateFields applies a merge-patch, returning gorm.ErrRecordNotFound
	// when the product does not exist.
	UpdateFields(ctx context.Context, db *gorm.DB, id string, patch domain.ProductPatch) error

	// Delete removes a product and reports whether a row existed.
	Delete(ctx context.Context, db *gorm.DB, id string) (bool, error)

	// Stats returns the product count and latest update timestamp.
	Stats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)
}

// ProductInput is the validated payload for creating a product.
type ProductInput struct {
	Name     string
	Price    float64
	Category string
}

// CatalogStats is the aggregate returned by Stats.
type CatalogStats struct {
	Count       int64      `json:"count"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// CatalogService coordinates product persistence and the list-page cache.
// It performs no authorization: callers are gated by the HTTP middleware
// before any method here runs.
type CatalogService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the product repository used by this service.
	Store ProductStore
	// Cache holds serialized list pages. May be nil; a nil cache simply
	// turns every list read into a store read.
	Cache cache.Cache
	// CacheTTL bounds the staleness of a cached list page.
	CacheTTL time.Duration
}

// NewCatalogService constructs a CatalogService with the default list TTL.
func NewCatalogService(db *gorm.DB, store ProductStore, c cache.Cache) *CatalogService {
	return &CatalogService{
		DB:       db,
		Store:    store,
		Cache:    c,
		CacheTTL: DefaultCacheTTL,
	}
}

// Create validates input, persists a new product, and evicts all cached list
// pages (the new record may appear on any page).
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if in.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	p, err := s.Store.Insert(ctx, s.DB, name, in.Price, strings.TrimSpace(in.Category))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("product.id", p.ID))

	// Invalidation strictly after the store write has committed.
	s.invalidateListPages(ctx)
	return p, nil
}

// Get reads a single product directly from the store; single-record lookups
// are not cached. Malformed and absent ids both yield ErrProductNotFound.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	if !repo.IsWellFormedID(id) {
		return nil, ErrProductNotFound
	}
	p, err := s.Store.Get(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns one page of products in insertion order, serving from the
// cache when a fresh entry exists. On a miss — or whenever the cache cannot
// be reached — the page is read from the store, serialized, and cached with
// the configured TTL. Cache failures never fail the read.
func (s *CatalogService) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int("offset", offset),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	key := listKey(offset, limit)

	if s.Cache != nil {
		b, hit, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			// Cache unreachable: degrade to a store read.
			cacheErrors.WithLabelValues("get").Inc()
			log.Warn().Err(err).Str("key", key).Msg("cache get failed; falling back to store")
		case hit:
			var items []domain.Product
			if uerr := json.Unmarshal(b, &items); uerr == nil {
				cacheHits.Inc()
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return items, nil
			}
			// Undecodable entry: treat as miss; it will be overwritten below.
			cacheErrors.WithLabelValues("decode").Inc()
			log.Warn().Str("key", key).Msg("cache entry undecodable; refetching from store")
		}
	}
	cacheMisses.Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false))

	items, err := s.Store.ListPage(ctx, s.DB, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Product{}
	}

	if s.Cache != nil {
		if b, merr := json.Marshal(items); merr == nil {
			if serr := s.Cache.Set(ctx, key, b, s.ttl()); serr != nil {
				cacheErrors.WithLabelValues("set").Inc()
				log.Warn().Err(serr).Str("key", key).Msg("cache populate failed; serving store result")
			}
		}
	}
	return items, nil
}

// Update applies a merge-patch to an existing product. Only supplied fields
// change; the merged record is re-validated before anything is written. An
// empty patch is a no-op that returns the current record. A successful
// update evicts all cached list pages.
func (s *CatalogService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	if !repo.IsWellFormedID(id) {
		return nil, ErrProductNotFound
	}
	if patch.IsZero() {
		return s.Get(ctx, id)
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if err := validateName(trimmed); err != nil {
			return nil, err
		}
		patch.Name = &trimmed
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	if err := s.Store.UpdateFields(ctx, s.DB, id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	p, err := s.Store.Get(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.invalidateListPages(ctx)
	return p, nil
}

// Delete hard-deletes a product and reports whether it existed. Deleting an
// absent or malformed id is not an error — it returns existed=false, which
// keeps the operation idempotent. Only an actual deletion evicts the cache.
func (s *CatalogService) Delete(ctx context.Context, id string) (bool, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	if !repo.IsWellFormedID(id) {
		return false, nil
	}
	existed, err := s.Store.Delete(ctx, s.DB, id)
	if err != nil {
		return false, err
	}
	if existed {
		s.invalidateListPages(ctx)
	}
	return existed, nil
}

// Stats returns catalog aggregates for the admin stats endpoint. It always
// reads the store; staleness here would defeat the point.
func (s *CatalogService) Stats(ctx context.Context) (*CatalogStats, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	count, last, err := s.Store.Stats(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &CatalogStats{Count: count, LastUpdated: last}, nil
}

// invalidateListPages evicts every cached list page. Failures are logged and
// swallowed: the store write has already committed, and TTL expiry bounds
// how long the stale pages can survive.
func (s *CatalogService) invalidateListPages(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeleteByPrefix(ctx, listKeyPrefix); err != nil {
		cacheErrors.WithLabelValues("invalidate").Inc()
		log.Warn().Err(err).Str("prefix", listKeyPrefix).Msg("cache invalidation failed; stale pages expire via TTL")
	}
}

func (s *CatalogService) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return DefaultCacheTTL
}

// listKey derives the deterministic cache key for one list page.
func listKey(offset, limit int) string {
	return fmt.Sprintf("%s%d:%d", listKeyPrefix, offset, limit)
}

// validateName enforces the product name invariants on an already-trimmed name.
func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return ErrNameTooLong
	}
	return nil
}
