package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-catalog-backend/internal/domain"
)

func TestCreateUser_PersistsAndNormalizesEmail(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "  Ada@Example.COM ", "hash", "Ada Lovelace", domain.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Email != "ada@example.com" || u.Role != domain.RoleUser || !u.IsActive {
		t.Fatalf("unexpected User fields: %+v", u)
	}

	got, err := GetUserByID(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Email != "ada@example.com" || got.PasswordHash != "hash" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCreateUser_DuplicateEmailRejectedByIndex(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "ada@example.com", "h1", "", domain.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, db, "ADA@example.com", "h2", "", domain.RoleUser); err == nil {
		t.Fatalf("expected unique index violation for duplicate email")
	}
}

func TestGetUserByEmail_CaseInsensitiveLookup(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "ada@example.com", "h", "", domain.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u, err := GetUserByEmail(ctx, db, "  ADA@Example.com ")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := GetUserByEmail(ctx, db, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestEmailExists(t *testing.T) {
	db := newRepoDB(t, &domain.User{})
	ctx := context.Background()

	ok, err := EmailExists(ctx, db, "ada@example.com")
	if err != nil || ok {
		t.Fatalf("empty table: ok=%v err=%v", ok, err)
	}

	if _, err := CreateUser(ctx, db, "ada@example.com", "h", "", domain.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	ok, err = EmailExists(ctx, db, "Ada@Example.com")
	if err != nil || !ok {
		t.Fatalf("after insert: ok=%v err=%v", ok, err)
	}
}
