package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	Title       string          `json:"title"       validate:"required,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Amount      decimal.Decimal `json:"amount"      validate:"gt=0"`
	Date        time.Time       `json:"date"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type ExpenseListResponse struct {
	Data  []ExpenseResponse `json:"data"`
	Total int64             `json:"total"`
}
