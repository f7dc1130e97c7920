package dto

// StockFilter is bound from GET /stock/all. When any material flag is set, only
// rows where one of the flagged pools is at or below Threshold are returned.
type StockFilter struct {
	PageQuery
	Threshold *int `form:"threshold" validate:"omitempty,min=0"`
	Gold      bool `form:"gold"`
	Silver    bool `form:"silver"`
	Copper    bool `form:"copper"`
}

type UpdateStockRequest struct {
	QuantityGold   int `json:"quantity_gold"   validate:"min=0"`
	QuantitySilver int `json:"quantity_silver" validate:"min=0"`
	QuantityCopper int `json:"quantity_copper" validate:"min=0"`
}

type StockResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	ProductCode string `json:"productCode"`
	Gold        int    `json:"gold"`
	Silver      int    `json:"silver"`
	Copper      int    `json:"copper"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type StockListResponse struct {
	Data  []StockResponse `json:"data"`
	Total int64           `json:"total"`
}

type StockMovementResponse struct {
	ID             string  `json:"id"`
	Material       string  `json:"material"`
	Kind           string  `json:"kind"`
	Delta          int     `json:"delta"`
	QuantityBefore int     `json:"quantityBefore"`
	QuantityAfter  int     `json:"quantityAfter"`
	SaleID         *string `json:"saleId,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
}
