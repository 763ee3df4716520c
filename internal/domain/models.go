// Package domain defines the persistence models for products and users.
// These types are mapped with GORM and form the core data layer of the
// catalog application.
package domain

import "time"

// Role values stored in User.Role. Admin unlocks destructive catalog
// operations (update/delete); everything else requires plain authentication.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Product is a single catalog entry. Products are hard-deleted: once removed
// there is no tombstone row, and the id is never reused (UUIDs).
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned by the repo on insert.
//   - Name: display name, 1–100 characters.
//   - Price: strictly positive unit price.
//   - Category: free-form label; no constraint beyond being a string.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM. CreatedAt doubles
//     as the natural insertion order used by paginated listing.
type Product struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(100);not null"`
	Price     float64   `json:"price"      gorm:"not null;check:price > 0"`
	Category  string    `json:"category"   gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_products_created"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ProductPatch carries a merge-patch for an existing product. Only non-nil
// fields are applied; absent fields keep their stored value.
type ProductPatch struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p ProductPatch) IsZero() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil
}

// User is an account able to authenticate against the API.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized to JSON.
//   - FullName: optional display name.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - IsActive: inactive accounts keep their record but cannot log in.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	FullName     string    `json:"full_name,omitempty" gorm:"type:varchar(255)"`
	Role         string    `json:"role"       gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	IsActive     bool      `json:"is_active"  gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
