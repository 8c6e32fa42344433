package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/metrics"
)

// InventoryService is the ledger for sweets. Every mutation goes through
// SweetRepository.Update so the read-check-write happens as one unit.
type InventoryService struct {
	repo ports.SweetRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewInventoryService(repo ports.SweetRepository, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *InventoryService) Create(ctx context.Context, p *domain.Principal, in ports.CreateSweetInput) (*domain.Sweet, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	sweet, err := domain.NewSweet(in.Name, in.Category, in.Price, in.Quantity, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create sweet")
		return nil, fmt.Errorf("create sweet: %w", err)
	}

	metrics.SweetsCreatedTotal.Inc()
	s.log.Info().Str("sweet_id", created.ID).Str("admin_id", p.UserID).Msg("sweet created")
	return created, nil
}

// Purchase takes exactly one unit of the sweet. A sweet with nothing left
// fails with domain.ErrOutOfStock and is left untouched.
func (s *InventoryService) Purchase(ctx context.Context, p *domain.Principal, id string) (*domain.Sweet, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	sweet, err := s.repo.Update(ctx, id, func(sw *domain.Sweet) error {
		if err := sw.Purchase(); err != nil {
			return err
		}
		sw.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
		return nil, wrapLedgerErr("purchase", err)
	}

	metrics.PurchasesTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("sweet_id", id).Str("user_id", p.UserID).Int("quantity", sweet.Quantity).Msg("sweet purchased")
	return sweet, nil
}

func (s *InventoryService) Restock(ctx context.Context, p *domain.Principal, id string, amount int) (*domain.Sweet, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, domain.Invalid("quantity", "must be greater than or equal to 0")
	}

	sweet, err := s.repo.Update(ctx, id, func(sw *domain.Sweet) error {
		if err := sw.Restock(amount); err != nil {
			return err
		}
		sw.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, wrapLedgerErr("restock", err)
	}

	metrics.RestockedUnitsTotal.Add(float64(amount))
	s.log.Info().Str("sweet_id", id).Str("admin_id", p.UserID).Int("amount", amount).Int("quantity", sweet.Quantity).Msg("sweet restocked")
	return sweet, nil
}

func (s *InventoryService) UpdatePrice(ctx context.Context, p *domain.Principal, id string, price decimal.Decimal) (*domain.Sweet, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(price); err != nil {
		return nil, err
	}

	sweet, err := s.repo.Update(ctx, id, func(sw *domain.Sweet) error {
		if err := sw.SetPrice(price); err != nil {
			return err
		}
		sw.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, wrapLedgerErr("update price", err)
	}

	metrics.PriceUpdatesTotal.Inc()
	s.log.Info().Str("sweet_id", id).Str("admin_id", p.UserID).Str("price", price.String()).Msg("sweet price updated")
	return sweet, nil
}

func (s *InventoryService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapLedgerErr("delete", err)
	}

	metrics.SweetsDeletedTotal.Inc()
	s.log.Info().Str("sweet_id", id).Str("admin_id", p.UserID).Msg("sweet deleted")
	return nil
}

// wrapLedgerErr passes domain outcomes through untouched and adds context to
// everything else.
func wrapLedgerErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrSweetNotFound),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrValidation):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrSweetNotFound):
		return "not_found"
	default:
		return "error"
	}
}
