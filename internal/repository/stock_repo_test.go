package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"jewelshop/internal/infra"
	"jewelshop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func seedStock(t *testing.T, db *gorm.DB, gold int) uuid.UUID {
	t.Helper()
	p := &model.Product{Name: "Ring", Code: "R-" + uuid.NewString()[:8], PriceGold: decimal.NewFromInt(100)}
	require.NoError(t, db.Omit("Stock").Create(p).Error)
	require.NoError(t, db.Omit("Product").Create(&model.Stock{ProductID: p.ID, QuantityGold: gold}).Error)
	return p.ID
}

func goldOf(t *testing.T, repo StockRepository, productID uuid.UUID) int {
	t.Helper()
	st, err := repo.FindByProductID(context.Background(), productID)
	require.NoError(t, err)
	return st.QuantityGold
}

func TestStockAdjust_GuardRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db)
	id := seedStock(t, db, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.AdjustTx(tx, id, model.MaterialGold, -4)
	})
	assert.ErrorIs(t, err, ErrStockGuard)
	assert.Equal(t, 3, goldOf(t, repo, id))
}

func TestStockAdjust_ExactAndIncrease(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db)
	id := seedStock(t, db, 3)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.AdjustTx(tx, id, model.MaterialGold, -3)
	}))
	assert.Equal(t, 0, goldOf(t, repo, id))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.AdjustTx(tx, id, model.MaterialGold, 2)
	}))
	assert.Equal(t, 2, goldOf(t, repo, id))
}

func TestStockAdjust_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.AdjustTx(tx, uuid.New(), model.MaterialGold, 1)
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.AdjustTx(tx, uuid.New(), model.MaterialGold, -1)
	})
	assert.ErrorIs(t, err, ErrStockGuard)
}

func TestStockLockByProductIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db)
	a, b := seedStock(t, db, 1), seedStock(t, db, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockByProductIDsTx(tx, []uuid.UUID{a, b, uuid.New()})
		require.NoError(t, err)
		require.Len(t, locked, 2)
		assert.Equal(t, 1, locked[a].QuantityGold)
		assert.Equal(t, 2, locked[b].QuantityGold)
		return nil
	})
	require.NoError(t, err)
}
