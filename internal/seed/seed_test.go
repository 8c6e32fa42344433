package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
)

func TestCatalog_SeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSweetRepository()

	n, err := Catalog(ctx, repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(defaultCatalog) {
		t.Fatalf("expected %d inserted, got %d", len(defaultCatalog), n)
	}

	sweets, err := repo.Find(ctx, ports.SweetFilter{}, ports.Page{Limit: 100})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(sweets) != len(defaultCatalog) || sweets[0].Name != "Gulab Jamun" {
		t.Fatalf("unexpected catalogue: %d items, first %q", len(sweets), sweets[0].Name)
	}
}

func TestCatalog_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSweetRepository()

	if _, err := Catalog(ctx, repo, zerolog.Nop()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	n, err := Catalog(ctx, repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed must insert nothing, got %d", n)
	}

	count, _ := repo.Count(ctx)
	if count != int64(len(defaultCatalog)) {
		t.Fatalf("expected %d sweets, got %d", len(defaultCatalog), count)
	}
}

func TestCatalog_LeavesExistingCatalogueAlone(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSweetRepository()
	s, _ := domain.NewSweet("House Special", "Fusion", decimal.NewFromInt(50), 1, time.Now())
	if _, err := repo.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := Catalog(ctx, repo, zerolog.Nop())
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got n=%d err=%v", n, err)
	}
}
