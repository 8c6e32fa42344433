package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

func TestBuildSweetQuery_Empty(t *testing.T) {
	q, err := buildSweetQuery(ports.SweetFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q) != 0 {
		t.Fatalf("expected empty query, got %v", q)
	}
}

func TestBuildSweetQuery_AllFields(t *testing.T) {
	name := "choc.late"
	category := "cake"
	minP := decimal.NewFromInt(5)
	maxP := decimal.RequireFromString("10.50")

	q, err := buildSweetQuery(ports.SweetFilter{Name: &name, Category: &category, MinPrice: &minP, MaxPrice: &maxP})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nameQ, ok := q["name"].(bson.M)
	if !ok {
		t.Fatalf("expected name regex, got %v", q["name"])
	}
	if nameQ["$regex"] != `choc\.late` || nameQ["$options"] != "i" {
		t.Fatalf("name must be a quoted case-insensitive regex, got %v", nameQ)
	}
	if q["category"] != "cake" {
		t.Fatalf("expected exact category, got %v", q["category"])
	}

	priceQ, ok := q["price"].(bson.M)
	if !ok {
		t.Fatalf("expected price bounds, got %v", q["price"])
	}
	if gte, _ := priceQ["$gte"].(primitive.Decimal128); gte.String() != "5" {
		t.Fatalf("unexpected $gte: %v", priceQ["$gte"])
	}
	if lte, _ := priceQ["$lte"].(primitive.Decimal128); lte.String() != "10.5" && lte.String() != "10.50" {
		t.Fatalf("unexpected $lte: %v", priceQ["$lte"])
	}
}

func TestMongoSweet_PriceRoundTrip(t *testing.T) {
	price := decimal.RequireFromString("12.34")
	d128, err := toDecimal128(price)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	doc := mongoSweet{ID: primitive.NewObjectID(), Name: "Jalebi", Category: "Indian Sweet", Price: d128, Quantity: 3}
	s, err := doc.toDomain()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !s.Price.Equal(price) {
		t.Fatalf("expected %s, got %s", price, s.Price)
	}
	if s.ID != doc.ID.Hex() {
		t.Fatalf("expected hex id, got %s", s.ID)
	}
}
