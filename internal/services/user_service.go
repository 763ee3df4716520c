// Package services – UserService
//
// This file implements UserService, which owns account registration and
// login. Registration enforces email format, password length, and email
// uniqueness, and stores only a bcrypt hash. Login verifies credentials,
// rejects inactive accounts, and issues a short-lived HS256 bearer token.
//
// The service returns typed errors; credential failures collapse into a
// single ErrInvalidCredentials so responses do not reveal whether the email
// exists.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-catalog-backend/internal/auth"
	"github.com/tbourn/go-catalog-backend/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const minPasswordLen = 8

// emailRE is a pragmatic format check, not a full RFC 5322 validator.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore defines the persistence contract required by UserService.
type UserStore interface {
	// Create inserts a new user with an already-hashed password.
	Create(ctx context.Context, db *gorm.DB, email, passwordHash, fullName, role string) (*domain.User, error)

	// GetByEmail fetches a user by email, gorm.ErrRecordNotFound if absent.
	GetByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)

	// EmailExists reports whether the email is already registered.
	EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
// *auth.Manager is the production implementation.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

// UserService provides registration and login.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the user repository used by this service.
	Store UserStore
	// Tokens signs access tokens on successful login.
	Tokens TokenIssuer
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, store UserStore, tokens TokenIssuer) *UserService {
	return &UserService{DB: db, Store: store, Tokens: tokens}
}

// Register creates a new active account with the default "user" role.
// Admin accounts are provisioned out of band, never via this endpoint.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRE.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	taken, err := s.Store.EmailExists(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.Store.Create(ctx, s.DB, email, hash, strings.TrimSpace(fullName), domain.RoleUser)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return u, nil
}

// Login verifies credentials and returns a signed bearer token plus the
// authenticated user. Unknown email and wrong password are indistinguishable
// to the caller; inactive accounts are rejected explicitly.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Login",
		trace.WithAttributes(attribute.Bool("login", true)),
	)
	defer span.End()

	u, err := s.Store.GetByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrUserInactive
	}

	token, err := s.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
