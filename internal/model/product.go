package model

import "github.com/shopspring/decimal"

// Product is a menu entry. Stock and SalesVolume change only through direct
// inventory edits, never through the order flow.
type Product struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock" validate:"gte=0"`
	SalesVolume int             `json:"salesVolume" validate:"gte=0"`
}
