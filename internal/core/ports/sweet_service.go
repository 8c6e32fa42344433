package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// CreateSweetInput is the DTO passed from the transport layer to the ledger.
type CreateSweetInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

// InventoryService is the only way sweets are created or mutated.
type InventoryService interface {
	Create(ctx context.Context, p *domain.Principal, in CreateSweetInput) (*domain.Sweet, error)
	Purchase(ctx context.Context, p *domain.Principal, id string) (*domain.Sweet, error)
	Restock(ctx context.Context, p *domain.Principal, id string, amount int) (*domain.Sweet, error)
	UpdatePrice(ctx context.Context, p *domain.Principal, id string, price decimal.Decimal) (*domain.Sweet, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
}

// CatalogService answers read-only catalogue queries. No principal is needed.
type CatalogService interface {
	List(ctx context.Context, page Page) ([]*domain.Sweet, error)
	Search(ctx context.Context, filter SweetFilter, page Page) ([]*domain.Sweet, error)
	Get(ctx context.Context, id string) (*domain.Sweet, error)
}
