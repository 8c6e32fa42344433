// Package seed fills an empty catalogue with the shop's starter sweets.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

type item struct {
	name     string
	category string
	price    int64
	quantity int
}

var defaultCatalog = []item{
	{"Gulab Jamun", "Indian Sweet", 120, 25},
	{"Rasgulla", "Indian Sweet", 100, 30},
	{"Kaju Katli", "Dry Sweet", 220, 15},
	{"Motichoor Laddu", "Indian Sweet", 140, 20},
	{"Mysore Pak", "South Indian", 160, 18},
	{"Jalebi", "Indian Sweet", 90, 40},
	{"Rasmalai", "Milk-based", 180, 22},
}

// Catalog inserts the default sweets when the store holds none and reports
// how many were added. A non-empty catalogue is left alone.
func Catalog(ctx context.Context, repo ports.SweetRepository, log zerolog.Logger) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count sweets: %w", err)
	}
	if n > 0 {
		log.Info().Int64("existing", n).Msg("catalogue not empty, skipping seed")
		return 0, nil
	}

	now := time.Now().UTC()
	for i, it := range defaultCatalog {
		sweet, err := domain.NewSweet(it.name, it.category, decimal.NewFromInt(it.price), it.quantity, now)
		if err != nil {
			return i, fmt.Errorf("seed %s: %w", it.name, err)
		}
		if _, err := repo.Create(ctx, sweet); err != nil {
			return i, fmt.Errorf("seed %s: %w", it.name, err)
		}
	}

	log.Info().Int("inserted", len(defaultCatalog)).Msg("catalogue seeded")
	return len(defaultCatalog), nil
}
