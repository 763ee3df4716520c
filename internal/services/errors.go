// Package services defines the business logic for the product catalog and
// user accounts. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrProductNotFound indicates that the requested product does not exist
	// or that the supplied identifier is not a well-formed UUID.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyName is returned when a create/update supplies a blank name.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrNameTooLong is returned when a name exceeds the maximum length.
	ErrNameTooLong = errors.New("name too long")

	// ErrInvalidPrice is returned when a price is zero or negative.
	ErrInvalidPrice = errors.New("price must be greater than zero")
)

// Account-related errors.
var (
	// ErrEmailTaken is returned when registering with an already-used email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned when an email fails the format check.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when a password is shorter than the minimum.
	ErrWeakPassword = errors.New("password too short")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures do not reveal which part was wrong.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrUserInactive is returned when a deactivated account tries to log in.
	ErrUserInactive = errors.New("user account is inactive")
)
