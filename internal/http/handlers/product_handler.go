// Product HTTP handlers.
//
// This file exposes REST endpoints for catalog resources:
//   - POST   /products            (create; authenticated)
//   - GET    /products            (list, offset/limit paginated, cache-aside)
//   - GET    /products/{id}       (fetch one)
//   - PUT    /products/{id}       (merge-patch update; admin)
//   - DELETE /products/{id}       (hard delete; admin)
//   - GET    /products/stats      (aggregates; admin)
//
// Handlers are transport-thin: they validate request shape, call the catalog
// service, and translate typed service errors into HTTP responses. All
// authorization happens upstream in the auth middleware; by the time a
// handler runs, the caller has already been gated.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-catalog-backend/internal/domain"
	"github.com/tbourn/go-catalog-backend/internal/services"
	"github.com/tbourn/go-catalog-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines product lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	// Create validates and persists a new product.
	Create(ctx context.Context, in services.ProductInput) (*domain.Product, error)
	// Get fetches a single product by id (never served from cache).
	Get(ctx context.Context, id string) (*domain.Product, error)
	// List returns one page of products in insertion order, cache-aside.
	List(ctx context.Context, offset, limit int) ([]domain.Product, error)
	// Update applies a merge-patch and returns the updated record.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	// Delete removes a product, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Stats returns catalog aggregates.
	Stats(ctx context.Context) (*services.CatalogStats, error)
}

//
// DTOs
//

// CreateProductRequest is the JSON payload for creating a product.
type CreateProductRequest struct {
	// Name is the display name (1–100 chars).
	Name string `json:"name" binding:"required,min=1,max=100" example:"Espresso beans 1kg"`
	// Price is the strictly positive unit price.
	Price float64 `json:"price" binding:"required,gt=0" example:"12.5"`
	// Category is a free-form label.
	Category string `json:"category" example:"coffee"`
}

// UpdateProductRequest is the JSON merge-patch payload for updating a
// product. Absent fields are left untouched.
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty" example:"Espresso beans 500g"`
	Price    *float64 `json:"price,omitempty" example:"7.9"`
	Category *string  `json:"category,omitempty" example:"coffee"`
}

//
// Handlers
//

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Creates a catalog entry and returns it with its assigned id.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateProductRequest  true  "Create product payload"
//
// @Success     201  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.catalogSvc.Create(c.Request.Context(), services.ProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	})
	if err != nil {
		if isValidationErr(err) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List products (paginated)
// @Description Returns one page of products in insertion order. Served from
// @Description the cache when a fresh entry exists (bounded staleness, 300s).
// @Tags        Products
// @Produce     json
// @Security    BearerAuth
//
// @Param       offset  query  int  false  "Rows to skip"          minimum(0) default(0)
// @Param       limit   query  int  false  "Max rows to return"    minimum(1) maximum(100) default(10)
//
// @Success     200  {array}   domain.Product
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	offset, limit := clampOffsetLimit(c)

	items, err := h.catalogSvc.List(c.Request.Context(), offset, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Fetch a product
// @Description Returns a single product by id, straight from the store.
// @Tags        Products
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Product
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Update a product (merge-patch)
// @Description Applies only the supplied fields; absent fields are preserved.
// @Tags        Products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Product ID (UUID)"  format(uuid)
// @Param       body  body  handlers.UpdateProductRequest  true  "Fields to change"
//
// @Success     200  {object}  domain.Product
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	patch := domain.ProductPatch{Name: req.Name, Price: req.Price, Category: req.Category}
	p, err := h.catalogSvc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		case isValidationErr(err):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Delete a product
// @Description Hard-deletes a product. Deleting an unknown id yields 404.
// @Tags        Products
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Product ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     404  {object}  handlers.ErrorResponse  "Product not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/{id} [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	existed, err := h.catalogSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if !existed {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}
	noContent(c)
}

// ProductStats godoc
// @ID          productStats
// @Summary     Catalog aggregates
// @Description Returns the product count and the latest update timestamp.
// @Tags        Products
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.CatalogStats
// @Failure     401  {object}  handlers.ErrorResponse  "Missing/invalid token"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /products/stats [get]
func (h *Handlers) ProductStats(c *gin.Context) {
	stats, err := h.catalogSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

//
// Helpers
//

// clampOffsetLimit parses and bounds the offset and limit query params.
// The service clamps again; doing it here keeps responses honest about the
// page actually served.
func clampOffsetLimit(c *gin.Context) (offset, limit int) {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)
	offset = utils.AtoiDefault(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}
	limit = utils.AtoiDefault(c.Query("limit"), defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return
}

// isValidationErr reports whether err is one of the catalog input errors
// that maps to a 400.
func isValidationErr(err error) bool {
	return errors.Is(err, services.ErrEmptyName) ||
		errors.Is(err, services.ErrNameTooLong) ||
		errors.Is(err, services.ErrInvalidPrice)
}
