package service

import (
	"context"
	"sort"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"

	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

type StatsService interface {
	// Stats aggregates sales and expenses dated within [start, end], both
	// bounds inclusive.
	Stats(ctx context.Context, start, end time.Time) (*dto.StatsResponse, error)
}

type statsService struct {
	sales    repository.SaleRepository
	expenses repository.ExpenseRepository
	cache    *StatsCache
}

func NewStatsService(sales repository.SaleRepository, expenses repository.ExpenseRepository, cache *StatsCache) StatsService {
	return &statsService{sales: sales, expenses: expenses, cache: cache}
}

func (s *statsService) Stats(ctx context.Context, start, end time.Time) (*dto.StatsResponse, error) {
	if end.Before(start) {
		return nil, invalid("startDate must not be after endDate")
	}

	key, cacheable := s.cache.snapshotKey(ctx, start, end)
	if cacheable {
		var cached dto.StatsResponse
		if s.cache.load(ctx, key, &cached) {
			return &cached, nil
		}
	}

	// repositories take half-open ranges
	until := end.Add(time.Nanosecond)
	sales, err := s.sales.ListBetween(ctx, start, until)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListBetween(ctx, start, until)
	if err != nil {
		return nil, err
	}

	resp := aggregateStats(sales, expenses)
	if cacheable {
		s.cache.store(ctx, key, resp)
	}
	return resp, nil
}

// aggregateStats buckets sales (by creation time) and expenses (by date) per
// UTC calendar day and sums the weight sold per material.
func aggregateStats(sales []model.Sale, expenses []model.Expense) *dto.StatsResponse {
	type bucket struct{ sales, expenses decimal.Decimal }
	days := make(map[string]*bucket)
	day := func(t time.Time) *bucket {
		k := t.UTC().Format(dayLayout)
		b, ok := days[k]
		if !ok {
			b = &bucket{sales: decimal.Zero, expenses: decimal.Zero}
			days[k] = b
		}
		return b
	}

	weights := make(map[model.Material]decimal.Decimal, len(model.Materials))
	for _, m := range model.Materials {
		weights[m] = decimal.Zero
	}

	totalSales, totalExpenses := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		b := day(sale.CreatedAt)
		b.sales = b.sales.Add(sale.TotalAfterDiscount)
		totalSales = totalSales.Add(sale.TotalAfterDiscount)

		for _, item := range sale.Items {
			if item.Product == nil {
				continue
			}
			w := item.Product.Spec(item.Material).Weight.Mul(decimal.NewFromInt(int64(item.Quantity)))
			weights[item.Material] = weights[item.Material].Add(w)
		}
	}
	for _, e := range expenses {
		b := day(e.Date)
		b.expenses = b.expenses.Add(e.Amount)
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	daily := make([]dto.DailyStats, 0, len(keys))
	for _, k := range keys {
		b := days[k]
		daily = append(daily, dto.DailyStats{
			Date:     k,
			Sales:    b.sales,
			Expenses: b.expenses,
			Profit:   b.sales.Sub(b.expenses),
		})
	}

	return &dto.StatsResponse{
		TotalSales:    totalSales,
		TotalExpenses: totalExpenses,
		Profit:        totalSales.Sub(totalExpenses),
		Weights: dto.MaterialWeights{
			Gold:   weights[model.MaterialGold],
			Silver: weights[model.MaterialSilver],
			Copper: weights[model.MaterialCopper],
		},
		DailyData: daily,
	}
}
