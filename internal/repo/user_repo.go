// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Error semantics match product_repo.go: ErrNotFound for missing rows, raw
// gorm errors otherwise. Email uniqueness is enforced by the ux_users_email
// index; callers that need a friendly duplicate error should check existence
// first (see services.UserService.Register).
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-catalog-backend/internal/domain"
)

// CreateUser inserts a new user row with a generated UUID, a lowercased
// email, and a UTC creation timestamp. The password must already be hashed.
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash, fullName, role string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by email (case-insensitive via lowercasing).
// Returns ErrNotFound when no such user exists.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by primary key. Returns ErrNotFound when the
// user does not exist.
func GetUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether a user with the given email already exists.
func EmailExists(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	_, err := GetUserByEmail(ctx, db, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
