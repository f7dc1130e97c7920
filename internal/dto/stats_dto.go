package dto

import "github.com/shopspring/decimal"

// StatsQuery is bound from GET /expenses/stats. Empty values default to the
// current calendar month.
type StatsQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

type DailyStats struct {
	Date     string          `json:"date"`
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

type MaterialWeights struct {
	Gold   decimal.Decimal `json:"gold"`
	Silver decimal.Decimal `json:"silver"`
	Copper decimal.Decimal `json:"copper"`
}

type StatsResponse struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Profit        decimal.Decimal `json:"profit"`
	Weights       MaterialWeights `json:"weights"`
	DailyData     []DailyStats    `json:"dailyData"`
}
