package dto

import (
	"jewelshop/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MaterialSpecRequest struct {
	Weight   decimal.Decimal `json:"weight"   validate:"min=0"`
	Price    decimal.Decimal `json:"price"    validate:"min=0"`
	Quantity int             `json:"quantity" validate:"min=0"`
}

type ProductRequest struct {
	Name   string              `json:"name"   validate:"required,min=1,max=120"`
	Code   string              `json:"code"   validate:"required,min=1,max=40"`
	Gold   MaterialSpecRequest `json:"gold"`
	Silver MaterialSpecRequest `json:"silver"`
	Copper MaterialSpecRequest `json:"copper"`
}

// Specs returns the per-material block of the request keyed by material.
func (r *ProductRequest) Specs() map[model.Material]MaterialSpecRequest {
	return map[model.Material]MaterialSpecRequest{
		model.MaterialGold:   r.Gold,
		model.MaterialSilver: r.Silver,
		model.MaterialCopper: r.Copper,
	}
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialSpecResponse struct {
	Weight   decimal.Decimal `json:"weight"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type ProductResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Code      string               `json:"code"`
	Gold      MaterialSpecResponse `json:"gold"`
	Silver    MaterialSpecResponse `json:"silver"`
	Copper    MaterialSpecResponse `json:"copper"`
	CreatedAt string               `json:"createdAt"`
	UpdatedAt string               `json:"updatedAt"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
}

// StockQuantities mirrors the stocks columns; the sale form reads these names.
type StockQuantities struct {
	QuantityGold   int `json:"quantity_gold"`
	QuantitySilver int `json:"quantity_silver"`
	QuantityCopper int `json:"quantity_copper"`
}

// ProductNameResponse is the lightweight row returned by GET /products?search=.
type ProductNameResponse struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Code  string           `json:"code"`
	Stock *StockQuantities `json:"stock"`
}

type ImportResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}
