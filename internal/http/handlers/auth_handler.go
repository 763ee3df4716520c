// Auth HTTP handlers.
//
// This file exposes the account endpoints:
//   - POST /auth/register  (create an account, role "user")
//   - POST /auth/login     (verify credentials, issue a bearer token)
//
// Both endpoints are unauthenticated by definition. Responses never include
// the password hash, and login failures are deliberately uniform so callers
// cannot probe which emails are registered.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-catalog-backend/internal/domain"
	"github.com/tbourn/go-catalog-backend/internal/services"
)

// UserService defines the account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Register creates a new active account with the default role.
	Register(ctx context.Context, email, password, fullName string) (*domain.User, error)
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// Handlers groups the HTTP endpoints for accounts and the product catalog.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	userSvc    UserService
	catalogSvc CatalogService
}

// New constructs a Handlers instance bound to the given services.
func New(userSvc UserService, catalogSvc CatalogService) *Handlers {
	return &Handlers{userSvc: userSvc, catalogSvc: catalogSvc}
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"     binding:"required,email" example:"ada@example.com"`
	Password string `json:"password"  binding:"required,min=8" example:"correct-horse"`
	FullName string `json:"full_name" example:"Ada Lovelace"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	UserID      string `json:"user_id"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Register a new user
// @Description Creates an active account with role "user" and returns it.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password (min 8 chars) required")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a short-lived bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Incorrect email or password"
// @Failure     403  {object}  handlers.ErrorResponse  "Account inactive"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}

	token, u, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.Header("WWW-Authenticate", "Bearer")
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "incorrect email or password")
		case errors.Is(err, services.ErrUserInactive):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "user account is inactive")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer", UserID: u.ID})
}
