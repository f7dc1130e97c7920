package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/infra"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"
	"jewelshop/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
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

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeAlerts struct {
	mu   sync.Mutex
	sent []worker.LowStockAlert
}

func (f *fakeAlerts) EnqueueLowStockAlert(_ context.Context, a worker.LowStockAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return nil
}

// clock is a settable time source.
type clock struct{ t time.Time }

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func admin() Actor { return Actor{ID: uuid.New(), Role: model.RoleAdmin} }

func clerk() Actor { return Actor{ID: uuid.New(), Role: model.RoleUser} }

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	salesRepo repository.SaleRepository
	expenses  repository.ExpenseRepository

	sales      SaleService
	productSvc ProductService
	stockSvc   StockService
	expenseSvc ExpenseService
	statsSvc   StatsService
	alerts     *fakeAlerts
	clock      *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, newTestDB(t))
}

// newFixtureOn builds the repositories and services on top of db.
func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		db:        db,
		products:  repository.NewProductRepository(db),
		stock:     repository.NewStockRepository(db),
		movements: repository.NewStockMovementRepository(db),
		salesRepo: repository.NewSaleRepository(db),
		expenses:  repository.NewExpenseRepository(db),
		alerts:    &fakeAlerts{},
		clock:     newClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
	f.sales = NewSaleService(f.salesRepo, f.products, f.stock, f.movements, nil, f.alerts, SaleOptions{
		EditWindow:        24 * time.Hour,
		LowStockThreshold: 5,
		Now:               f.clock.Now,
	})
	f.productSvc = NewProductService(f.products, f.stock, f.movements, nil)
	f.stockSvc = NewStockService(f.stock, f.movements)
	f.expenseSvc = NewExpenseService(f.expenses, nil)
	f.statsSvc = NewStatsService(f.salesRepo, f.expenses, nil)
	return f
}

type stockSpec struct {
	gold, silver, copper int
}

// addProduct creates a product priced 100/10/1 per unit and weighing
// 2/3/4 grams in gold/silver/copper.
func (f *fixture) addProduct(t *testing.T, name string, qty stockSpec) uuid.UUID {
	t.Helper()
	resp, err := f.productSvc.Create(context.Background(), dto.ProductRequest{
		Name:   name,
		Code:   strings.ToUpper(name) + "-" + uuid.NewString()[:6],
		Gold:   dto.MaterialSpecRequest{Price: dec("100"), Weight: dec("2"), Quantity: qty.gold},
		Silver: dto.MaterialSpecRequest{Price: dec("10"), Weight: dec("3"), Quantity: qty.silver},
		Copper: dto.MaterialSpecRequest{Price: dec("1"), Weight: dec("4"), Quantity: qty.copper},
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (f *fixture) quantity(t *testing.T, productID uuid.UUID, m model.Material) int {
	t.Helper()
	st, err := f.stock.FindByProductID(context.Background(), productID)
	require.NoError(t, err)
	return st.Quantity(m)
}

func (f *fixture) countSales(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Sale{}).Count(&n).Error)
	return n
}

func line(productID uuid.UUID, m model.Material, qty int, price string) dto.SaleItemRequest {
	return dto.SaleItemRequest{
		ProductID: productID.String(),
		Material:  string(m),
		Qty:       qty,
		Price:     dec(price),
		Discount:  decimal.Zero,
	}
}

func saleOf(lines ...dto.SaleItemRequest) dto.SaleRequest {
	return dto.SaleRequest{GlobalDiscount: decimal.Zero, Sales: lines}
}
