package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
)

var (
	testAdmin = &domain.Principal{UserID: "admin-1", Username: "admin", IsAdmin: true}
	testUser  = &domain.Principal{UserID: "user-1", Username: "carol"}
)

type InventoryServiceSuite struct {
	suite.Suite
	repo *memory.SweetRepository
	svc  *InventoryService
	ctx  context.Context
}

func TestInventoryServiceSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceSuite))
}

func (s *InventoryServiceSuite) SetupTest() {
	s.repo = memory.NewSweetRepository()
	s.svc = NewInventoryService(s.repo, zerolog.Nop())
	s.ctx = context.Background()
}

func (s *InventoryServiceSuite) createSweet(name string, qty int) *domain.Sweet {
	sweet, err := s.svc.Create(s.ctx, testAdmin, ports.CreateSweetInput{
		Name:     name,
		Category: "Candy",
		Price:    decimal.RequireFromString("1.25"),
		Quantity: qty,
	})
	s.Require().NoError(err)
	return sweet
}

func (s *InventoryServiceSuite) TestCreate() {
	sweet := s.createSweet("Toffee", 3)

	s.NotEmpty(sweet.ID)
	s.Equal("Toffee", sweet.Name)
	s.Equal(3, sweet.Quantity)
	s.False(sweet.CreatedAt.IsZero())
}

func (s *InventoryServiceSuite) TestCreate_Validation() {
	cases := []ports.CreateSweetInput{
		{Name: "", Category: "Candy", Price: decimal.NewFromInt(1), Quantity: 1},
		{Name: "A", Category: " ", Price: decimal.NewFromInt(1), Quantity: 1},
		{Name: "A", Category: "Candy", Price: decimal.Zero, Quantity: 1},
		{Name: "A", Category: "Candy", Price: decimal.NewFromInt(-2), Quantity: 1},
		{Name: "A", Category: "Candy", Price: decimal.RequireFromString("1.005"), Quantity: 1},
		{Name: "A", Category: "Candy", Price: decimal.NewFromInt(1), Quantity: -1},
	}
	for _, in := range cases {
		_, err := s.svc.Create(s.ctx, testAdmin, in)
		s.ErrorIs(err, domain.ErrValidation, "%+v", in)
	}

	n, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *InventoryServiceSuite) TestAuthorizationMatrix() {
	sweet := s.createSweet("Fudge", 2)
	price := decimal.NewFromInt(5)

	adminOps := map[string]func(p *domain.Principal) error{
		"create": func(p *domain.Principal) error {
			_, err := s.svc.Create(s.ctx, p, ports.CreateSweetInput{Name: "X", Category: "Y", Price: price, Quantity: 1})
			return err
		},
		"restock": func(p *domain.Principal) error {
			_, err := s.svc.Restock(s.ctx, p, sweet.ID, 1)
			return err
		},
		"update price": func(p *domain.Principal) error {
			_, err := s.svc.UpdatePrice(s.ctx, p, sweet.ID, price)
			return err
		},
		"delete": func(p *domain.Principal) error {
			return s.svc.Delete(s.ctx, p, sweet.ID)
		},
	}
	for name, op := range adminOps {
		s.ErrorIs(op(nil), domain.ErrUnauthenticated, name)
		s.ErrorIs(op(testUser), domain.ErrForbidden, name)
	}

	_, err := s.svc.Purchase(s.ctx, nil, sweet.ID)
	s.ErrorIs(err, domain.ErrUnauthenticated)

	got, err := s.repo.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	s.Equal(2, got.Quantity, "rejected calls must not change the sweet")
	s.True(got.Price.Equal(sweet.Price))
}

func (s *InventoryServiceSuite) TestPurchase() {
	sweet := s.createSweet("Nougat", 2)

	after, err := s.svc.Purchase(s.ctx, testUser, sweet.ID)
	s.Require().NoError(err)
	s.Equal(1, after.Quantity)

	after, err = s.svc.Purchase(s.ctx, testAdmin, sweet.ID)
	s.Require().NoError(err)
	s.Equal(0, after.Quantity)

	_, err = s.svc.Purchase(s.ctx, testUser, sweet.ID)
	s.ErrorIs(err, domain.ErrOutOfStock)

	got, _ := s.repo.FindByID(s.ctx, sweet.ID)
	s.Equal(0, got.Quantity)
}

func (s *InventoryServiceSuite) TestPurchase_NotFound() {
	_, err := s.svc.Purchase(s.ctx, testUser, "missing")
	s.ErrorIs(err, domain.ErrSweetNotFound)
}

func (s *InventoryServiceSuite) TestRestock() {
	sweet := s.createSweet("Brittle", 0)

	after, err := s.svc.Restock(s.ctx, testAdmin, sweet.ID, 5)
	s.Require().NoError(err)
	s.Equal(5, after.Quantity)

	after, err = s.svc.Restock(s.ctx, testAdmin, sweet.ID, 0)
	s.Require().NoError(err)
	s.Equal(5, after.Quantity)

	_, err = s.svc.Restock(s.ctx, testAdmin, sweet.ID, -1)
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Restock(s.ctx, testAdmin, "missing", 1)
	s.ErrorIs(err, domain.ErrSweetNotFound)
}

func (s *InventoryServiceSuite) TestRestock_RejectsOverflow() {
	sweet := s.createSweet("Halva", 5)

	_, err := s.svc.Restock(s.ctx, testAdmin, sweet.ID, math.MaxInt)
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.Restock(s.ctx, testAdmin, sweet.ID, domain.MaxQuantity)
	s.ErrorIs(err, domain.ErrValidation)

	got, err := s.repo.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	s.Equal(5, got.Quantity)
}

func (s *InventoryServiceSuite) TestUpdatePrice_RejectsAboveMax() {
	sweet := s.createSweet("Baklava", 1)

	_, err := s.svc.UpdatePrice(s.ctx, testAdmin, sweet.ID, decimal.RequireFromString("10000000000"))
	s.ErrorIs(err, domain.ErrValidation)

	got, err := s.repo.FindByID(s.ctx, sweet.ID)
	s.Require().NoError(err)
	s.True(got.Price.Equal(sweet.Price))
}

func (s *InventoryServiceSuite) TestUpdatePrice() {
	sweet := s.createSweet("Praline", 1)

	after, err := s.svc.UpdatePrice(s.ctx, testAdmin, sweet.ID, decimal.RequireFromString("3.99"))
	s.Require().NoError(err)
	s.True(after.Price.Equal(decimal.RequireFromString("3.99")))
	s.Equal(1, after.Quantity)

	_, err = s.svc.UpdatePrice(s.ctx, testAdmin, sweet.ID, decimal.Zero)
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.svc.UpdatePrice(s.ctx, testAdmin, "missing", decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrSweetNotFound)
}

func (s *InventoryServiceSuite) TestDelete() {
	sweet := s.createSweet("Marzipan", 1)

	s.Require().NoError(s.svc.Delete(s.ctx, testAdmin, sweet.ID))
	_, err := s.repo.FindByID(s.ctx, sweet.ID)
	s.ErrorIs(err, domain.ErrSweetNotFound)

	s.ErrorIs(s.svc.Delete(s.ctx, testAdmin, sweet.ID), domain.ErrSweetNotFound)
	_, err = s.svc.Purchase(s.ctx, testUser, sweet.ID)
	s.ErrorIs(err, domain.ErrSweetNotFound)
}

func (s *InventoryServiceSuite) TestConcurrentPurchaseOfLastUnit() {
	sweet := s.createSweet("Last One", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Purchase(s.ctx, testUser, sweet.ID)
		}(i)
	}
	wg.Wait()

	var ok, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrOutOfStock):
			outOfStock++
		}
	}
	s.Equal(1, ok)
	s.Equal(1, outOfStock)

	got, _ := s.repo.FindByID(s.ctx, sweet.ID)
	s.Equal(0, got.Quantity)
}

func TestInventoryService_ConcurrentPurchasesNeverOversell(t *testing.T) {
	repo := memory.NewSweetRepository()
	svc := NewInventoryService(repo, zerolog.Nop())
	ctx := context.Background()

	sweet, err := svc.Create(ctx, testAdmin, ports.CreateSweetInput{Name: "Gumdrop", Category: "Candy", Price: decimal.NewFromInt(1), Quantity: 25})
	require.NoError(t, err)

	const buyers = 60
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(ctx, testUser, sweet.ID); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrOutOfStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, sold)
	got, err := repo.FindByID(ctx, sweet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}
