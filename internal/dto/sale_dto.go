package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID   string          `json:"productId"   validate:"required,uuid"`
	ProductName string          `json:"productName"`
	Material    string          `json:"material"    validate:"required,oneof=gold silver copper"`
	Qty         int             `json:"qty"         validate:"required,min=1"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Discount    decimal.Decimal `json:"discount"    validate:"min=0,max=100"`
}

// SaleRequest is the body of POST /sales and PUT /sales/:id. Totals are not
// accepted from the client; they are recomputed from the lines.
type SaleRequest struct {
	CustomerName   *string           `json:"customerName"   validate:"omitempty,max=120"`
	CustomerPhone  *string           `json:"customerPhone"  validate:"omitempty,max=40"`
	GlobalDiscount decimal.Decimal   `json:"globalDiscount" validate:"min=0,max=100"`
	Sales          []SaleItemRequest `json:"sales"          validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Material    string          `json:"material"`
	Qty         int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

type SaleResponse struct {
	ID                  string             `json:"id"`
	CustomerName        *string            `json:"customerName,omitempty"`
	CustomerPhone       *string            `json:"customerPhone,omitempty"`
	CreatedByID         *string            `json:"createdById"`
	GlobalDiscount      decimal.Decimal    `json:"globalDiscount"`
	TotalBeforeDiscount decimal.Decimal    `json:"totalBeforeDiscount"`
	TotalAfterDiscount  decimal.Decimal    `json:"totalAfterDiscount"`
	CreatedAt           string             `json:"createdAt"`
	UpdatedAt           string             `json:"updatedAt"`
	Sales               []SaleItemResponse `json:"sales"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
}
