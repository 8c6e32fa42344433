package handler

import "github.com/shopspring/decimal"

type createSweetRequest struct {
	Name     string           `json:"name"     validate:"required"`
	Category string           `json:"category" validate:"required"`
	Price    *decimal.Decimal `json:"price"    validate:"required" swaggertype:"number"`
	Quantity *int             `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

type updatePriceRequest struct {
	Price *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
}

type restockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

type sweetResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type messageResponse struct {
	Detail string `json:"detail"`
}
