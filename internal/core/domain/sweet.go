package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sweet is a catalogue item. Quantity never drops below zero and price is
// always strictly positive once persisted.
type Sweet struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSweet validates the attributes of a sweet about to be created.
func NewSweet(name, category string, price decimal.Decimal, quantity int, now time.Time) (*Sweet, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)

	if name == "" {
		return nil, Invalid("name", "must not be empty")
	}
	if category == "" {
		return nil, Invalid("category", "must not be empty")
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, Invalid("quantity", "must be greater than or equal to 0")
	}
	if quantity > MaxQuantity {
		return nil, Invalid("quantity", "must be less than or equal to %d", MaxQuantity)
	}

	return &Sweet{
		Name:      name,
		Category:  category,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

const (
	// PriceScale is the number of decimal places a price may carry.
	PriceScale = 2

	// MaxQuantity is the largest stock level a sweet may hold. It matches
	// the 32-bit integer column of the SQL stores.
	MaxQuantity = math.MaxInt32
)

// MaxPrice is the largest price the DECIMAL(12,2) column can hold.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ValidatePrice rejects zero and negative prices, sub-cent precision and
// prices above MaxPrice.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return Invalid("price", "must be greater than 0")
	}
	if price.GreaterThan(MaxPrice) {
		return Invalid("price", "must be less than or equal to %s", MaxPrice.StringFixed(PriceScale))
	}
	if !price.Equal(price.Truncate(PriceScale)) {
		return Invalid("price", "must have at most %d decimal places", PriceScale)
	}
	return nil
}

// Purchase takes one unit out of stock.
func (s *Sweet) Purchase() error {
	if s.Quantity <= 0 {
		return ErrOutOfStock
	}
	s.Quantity--
	return nil
}

// Restock adds amount units. Zero is accepted and leaves the quantity
// unchanged; a total above MaxQuantity is rejected and nothing changes.
func (s *Sweet) Restock(amount int) error {
	if amount < 0 {
		return Invalid("quantity", "must be greater than or equal to 0")
	}
	if amount > MaxQuantity-s.Quantity {
		return Invalid("quantity", "would raise stock above %d", MaxQuantity)
	}
	s.Quantity += amount
	return nil
}

// SetPrice replaces the current price.
func (s *Sweet) SetPrice(price decimal.Decimal) error {
	if err := ValidatePrice(price); err != nil {
		return err
	}
	s.Price = price
	return nil
}
