package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-catalog-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestInsertProduct_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	p, err := InsertProduct(context.Background(), db, "Beans", 12.5, "coffee")
	if err == nil || p != nil {
		t.Fatalf("expected error creating without table, got p=%v err=%v", p, err)
	}
}

func TestInsertProduct_PersistsAndSetsFields(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})

	start := time.Now().UTC().Add(-time.Minute)
	p, err := InsertProduct(context.Background(), db, "Beans", 12.5, "coffee")
	if err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	if p.ID == "" || p.Name != "Beans" || p.Price != 12.5 || p.Category != "coffee" {
		t.Fatalf("unexpected Product fields: %+v", p)
	}
	if p.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt not set: %v", p.CreatedAt)
	}

	got, err := GetProduct(context.Background(), db, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.ID != p.ID || got.Name != "Beans" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	_, err := GetProduct(context.Background(), db, "11111111-1111-1111-1111-111111111111")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListProductsPage_InsertionOrderAndBounds(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	ctx := context.Background()

	// Insert with explicit timestamps so ordering is deterministic.
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := &domain.Product{
			ID:        fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i),
			Name:      fmt.Sprintf("p%d", i),
			Price:     float64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := ListProductsPage(ctx, db, 1, 2)
	if err != nil {
		t.Fatalf("ListProductsPage: %v", err)
	}
	if len(page) != 2 || page[0].Name != "p1" || page[1].Name != "p2" {
		t.Fatalf("page unexpected: %+v", page)
	}

	// Offset past the end: empty, not an error.
	empty, err := ListProductsPage(ctx, db, 100, 10)
	if err != nil {
		t.Fatalf("ListProductsPage: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}

func TestCountProducts(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	ctx := context.Background()

	n, err := CountProducts(ctx, db)
	if err != nil || n != 0 {
		t.Fatalf("empty count: n=%d err=%v", n, err)
	}
	if _, err := InsertProduct(ctx, db, "a", 1, ""); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	if _, err := InsertProduct(ctx, db, "b", 2, ""); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	n, err = CountProducts(ctx, db)
	if err != nil || n != 2 {
		t.Fatalf("count after inserts: n=%d err=%v", n, err)
	}
}

func TestUpdateProductFields_MergeSemantics(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	ctx := context.Background()

	p, err := InsertProduct(ctx, db, "Beans", 12.5, "coffee")
	if err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	newPrice := 9.9
	if err := UpdateProductFields(ctx, db, p.ID, domain.ProductPatch{Price: &newPrice}); err != nil {
		t.Fatalf("UpdateProductFields: %v", err)
	}

	got, err := GetProduct(ctx, db, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	// Only price changed; name and category kept their stored values.
	if got.Price != 9.9 || got.Name != "Beans" || got.Category != "coffee" {
		t.Fatalf("merge-patch violated: %+v", got)
	}
}

func TestUpdateProductFields_EmptyPatchIsNoOp(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	ctx := context.Background()

	p, err := InsertProduct(ctx, db, "Beans", 12.5, "coffee")
	if err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	if err := UpdateProductFields(ctx, db, p.ID, domain.ProductPatch{}); err != nil {
		t.Fatalf("empty patch must be a no-op, got %v", err)
	}
}

func TestUpdateProductFields_MissingRow(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	name := "x"
	err := UpdateProductFields(context.Background(), db, "11111111-1111-1111-1111-111111111111", domain.ProductPatch{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteProduct_HardDeleteAndRepeat(t *testing.T) {
	db := newRepoDB(t, &domain.Product{})
	ctx := context.Background()

	p, err := InsertProduct(ctx, db, "Beans", 12.5, "coffee")
	if err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}

	existed, err := DeleteProduct(ctx, db, p.ID)
	if err != nil || !existed {
		t.Fatalf("first delete: existed=%v err=%v", existed, err)
	}
	// Row is gone, not tombstoned.
	if _, err := GetProduct(ctx, db, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted row still readable: %v", err)
	}
	// Repeat delete is a clean no-op.
	existed, err = DeleteProduct(ctx, db, p.ID)
	if err != nil || existed {
		t.Fatalf("second delete: existed=%v err=%v", existed, err)
	}
}

func TestIsWellFormedID(t *testing.T) {
	if !IsWellFormedID("11111111-1111-1111-1111-111111111111") {
		t.Fatalf("valid uuid rejected")
	}
	for _, bad := range []string{"", "abc", "123", "11111111-1111-1111-1111"} {
		if IsWellFormedID(bad) {
			t.Fatalf("malformed id %q accepted", bad)
		}
	}
}
