package service

import (
	"context"
	"errors"
	"strings"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseService interface {
	Create(ctx context.Context, req dto.ExpenseRequest) (*dto.ExpenseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page dto.PageQuery) (*dto.ExpenseListResponse, error)
}

type expenseService struct {
	repo  repository.ExpenseRepository
	cache *StatsCache
}

func NewExpenseService(repo repository.ExpenseRepository, cache *StatsCache) ExpenseService {
	return &expenseService{repo: repo, cache: cache}
}

func (s *expenseService) Create(ctx context.Context, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	e := &model.Expense{}
	if err := applyExpense(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := expenseToResponse(e)
	return &resp, nil
}

func (s *expenseService) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := expenseToResponse(e)
	return &resp, nil
}

func (s *expenseService) Update(ctx context.Context, id uuid.UUID, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyExpense(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := expenseToResponse(e)
	return &resp, nil
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("expense")
		}
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *expenseService) List(ctx context.Context, page dto.PageQuery) (*dto.ExpenseListResponse, error) {
	expenses, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	resp := &dto.ExpenseListResponse{Data: make([]dto.ExpenseResponse, len(expenses)), Total: total}
	for i := range expenses {
		resp.Data[i] = expenseToResponse(&expenses[i])
	}
	return resp, nil
}

func (s *expenseService) find(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("expense")
		}
		return nil, err
	}
	return e, nil
}

func applyExpense(e *model.Expense, req dto.ExpenseRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return invalid("title is required")
	}
	if !req.Amount.IsPositive() {
		return invalid("amount must be greater than 0")
	}
	if req.Date.IsZero() {
		return invalid("date is required")
	}
	e.Title = title
	e.Description = req.Description
	e.Amount = req.Amount
	e.Date = req.Date.UTC()
	return nil
}

func expenseToResponse(e *model.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          e.ID.String(),
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        formatTime(e.Date),
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	}
}
