package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// CatalogService serves read-only listings and searches.
type CatalogService struct {
	repo ports.SweetRepository
}

func NewCatalogService(repo ports.SweetRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) List(ctx context.Context, page ports.Page) ([]*domain.Sweet, error) {
	return s.Search(ctx, ports.SweetFilter{}, page)
}

// Search returns the sweets matching every set field of filter. An empty
// result is an empty slice, never an error.
func (s *CatalogService) Search(ctx context.Context, filter ports.SweetFilter, page ports.Page) ([]*domain.Sweet, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	if page.Limit == 0 {
		return []*domain.Sweet{}, nil
	}

	filter = normalizeFilter(filter)
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return []*domain.Sweet{}, nil
	}

	sweets, err := s.repo.Find(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	if sweets == nil {
		sweets = []*domain.Sweet{}
	}
	return sweets, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	return s.repo.FindByID(ctx, id)
}

func validatePage(p ports.Page) error {
	if p.Skip < 0 {
		return domain.Invalid("skip", "must be greater than or equal to 0")
	}
	if p.Limit < 0 {
		return domain.Invalid("limit", "must be greater than or equal to 0")
	}
	return nil
}

// normalizeFilter treats blank text criteria as unset.
func normalizeFilter(f ports.SweetFilter) ports.SweetFilter {
	if f.Name != nil && strings.TrimSpace(*f.Name) == "" {
		f.Name = nil
	}
	if f.Category != nil && *f.Category == "" {
		f.Category = nil
	}
	return f
}
