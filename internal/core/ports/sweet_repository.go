package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// ErrConcurrentUpdate is returned by stores using optimistic locking when a
// mutation kept losing the race for a record.
var ErrConcurrentUpdate = errors.New("sweet was modified concurrently")

// SweetFilter holds the optional search criteria. A nil field imposes no
// constraint; set fields are combined with AND.
type SweetFilter struct {
	Name     *string          // case-insensitive substring
	Category *string          // exact match
	MinPrice *decimal.Decimal // inclusive
	MaxPrice *decimal.Decimal // inclusive
}

// DefaultPageLimit is the page size used when a caller does not pick one.
const DefaultPageLimit = 100

// Page selects a window of a creation-ordered result set. Repositories read
// a zero Limit as "no limit"; CatalogService answers it with an empty page
// before reaching them.
type Page struct {
	Skip  int
	Limit int
}

// MutateFunc changes a freshly read sweet in place. Returning an error aborts
// the mutation and nothing is written.
type MutateFunc func(s *domain.Sweet) error

// SweetRepository persists sweets.
type SweetRepository interface {
	Create(ctx context.Context, s *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	// Find returns sweets matching filter in creation order.
	Find(ctx context.Context, filter SweetFilter, page Page) ([]*domain.Sweet, error)
	// Update reads the sweet, applies mutate and writes the result as one
	// atomic unit with respect to other updates of the same id.
	Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
