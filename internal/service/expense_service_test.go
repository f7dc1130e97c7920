package service

import (
	"context"
	"testing"
	"time"

	"jewelshop/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("UTC-3", -3*3600))
	note := "March"

	created, err := f.expenseSvc.Create(ctx, dto.ExpenseRequest{Title: " Rent ", Description: &note, Amount: dec("800"), Date: date})
	require.NoError(t, err)
	assert.Equal(t, "Rent", created.Title)
	assert.Equal(t, "2026-03-01T13:00:00Z", created.Date)
	id := uuid.MustParse(created.ID)

	updated, err := f.expenseSvc.Update(ctx, id, dto.ExpenseRequest{Title: "Rent", Amount: dec("850.50"), Date: date})
	require.NoError(t, err)
	assert.Equal(t, "850.50", updated.Amount.StringFixed(2))
	assert.Nil(t, updated.Description)

	list, err := f.expenseSvc.List(ctx, dto.PageQuery{Search: "ren"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	require.NoError(t, f.expenseSvc.Delete(ctx, id))
	_, err = f.expenseSvc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.expenseSvc.Delete(ctx, id), ErrNotFound)
}

func TestExpenseCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	cases := map[string]dto.ExpenseRequest{
		"blank title": {Title: "  ", Amount: dec("1"), Date: now},
		"zero amount": {Title: "Rent", Amount: dec("0"), Date: now},
		"no date":     {Title: "Rent", Amount: dec("1")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.expenseSvc.Create(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
