package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/infra"
	"jewelshop/internal/model"
	"jewelshop/internal/repository"
	"jewelshop/internal/worker"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Create(ctx context.Context, actor Actor, req dto.SaleRequest) (*dto.SaleResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.SaleRequest) (*dto.SaleResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, page dto.PageQuery) (*dto.SaleListResponse, error)
	// Receipt writes a PDF receipt of the sale to w.
	Receipt(ctx context.Context, id uuid.UUID, w io.Writer) error
}

// AlertDispatcher queues low-stock notifications; *worker.Dispatcher satisfies it.
type AlertDispatcher interface {
	EnqueueLowStockAlert(ctx context.Context, alert worker.LowStockAlert) error
}

// SaleOptions tunes the sale workflow. Zero values fall back to defaults.
type SaleOptions struct {
	EditWindow        time.Duration
	LowStockThreshold int
	Now               func() time.Time
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	cache     *StatsCache
	alerts    AlertDispatcher

	window    time.Duration
	threshold int
	now       func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	cache *StatsCache,
	alerts AlertDispatcher,
	opts SaleOptions,
) SaleService {
	s := &saleService{
		repo:      repo,
		products:  products,
		stock:     stock,
		movements: movements,
		cache:     cache,
		alerts:    alerts,
		window:    opts.EditWindow,
		threshold: opts.LowStockThreshold,
		now:       opts.Now,
	}
	if s.window <= 0 {
		s.window = DefaultEditWindow
	}
	if s.threshold <= 0 {
		s.threshold = defaultLowStockThreshold
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

const defaultLowStockThreshold = 5

// runTx executes fn inside a GORM transaction.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// One transaction:
//   1. lock the stock rows of every referenced product
//   2. check each line against its pool (lines on the same pool add up)
//   3. insert sale + items with server-side totals
//   4. guarded decrement of every pool, one movement row per pool
// After commit: metrics, stats cache invalidation, low-stock alerts.

func (s *saleService) Create(ctx context.Context, actor Actor, req dto.SaleRequest) (*dto.SaleResponse, error) {
	items, err := buildSaleItems(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sale := &model.Sale{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		GlobalDiscount: req.GlobalDiscount,
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          items,
	}
	if actor.ID != uuid.Nil {
		creator := actor.ID
		sale.CreatedByID = &creator
	}
	sale.ComputeTotals()

	var low []poolLevel
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ledger, err := s.openLedger(tx, productIDsOf(items))
		if err != nil {
			return err
		}
		if err := ledger.check(items); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return err
		}
		low, err = s.take(tx, ledger, sale.ID, actor, items)
		if err != nil {
			return err
		}
		attachProducts(sale.Items, ledger.products)
		return nil
	})
	if txErr != nil {
		s.recordFailure("create", txErr)
		return nil, txErr
	}

	infra.SalesTotal.WithLabelValues("create", "ok").Inc()
	countItems(infra.ItemsSold, items)
	s.afterCommit(ctx, sale.ID, low)
	return saleToResponse(sale), nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Restores the stock of the old lines, then applies the new lines as a fresh
// sale would. Final stock equals delete(old) followed by create(new).

func (s *saleService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.SaleRequest) (*dto.SaleResponse, error) {
	items, err := buildSaleItems(req)
	if err != nil {
		return nil, err
	}

	var (
		sale     *model.Sale
		oldItems []model.SaleItem
		low      []poolLevel
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("sale")
			}
			return err
		}
		now := s.now().UTC()
		if err := CanModify(sale, actor, now, s.window); err != nil {
			return err
		}
		oldItems = sale.Items

		ids := append(productIDsOf(oldItems), productIDsOf(items)...)
		ledger, err := s.openLedger(tx, ids)
		if err != nil {
			return err
		}
		if err := s.restore(tx, ledger, sale.ID, actor, oldItems); err != nil {
			return err
		}
		if err := ledger.check(items); err != nil {
			return err
		}

		sale.CustomerName = req.CustomerName
		sale.CustomerPhone = req.CustomerPhone
		sale.GlobalDiscount = req.GlobalDiscount
		sale.UpdatedAt = now
		sale.Items = items
		sale.ComputeTotals()

		if err := s.repo.ReplaceItemsTx(tx, sale.ID, sale.Items); err != nil {
			return err
		}
		if err := s.repo.UpdateTx(tx, sale); err != nil {
			return err
		}
		low, err = s.take(tx, ledger, sale.ID, actor, sale.Items)
		if err != nil {
			return err
		}
		attachProducts(sale.Items, ledger.products)
		return nil
	})
	if txErr != nil {
		s.recordFailure("update", txErr)
		return nil, txErr
	}

	infra.SalesTotal.WithLabelValues("update", "ok").Inc()
	countItems(infra.ItemsRestored, oldItems)
	countItems(infra.ItemsSold, items)
	s.afterCommit(ctx, sale.ID, low)
	return saleToResponse(sale), nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *saleService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	var items []model.SaleItem
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("sale")
			}
			return err
		}
		if err := CanModify(sale, actor, s.now().UTC(), s.window); err != nil {
			return err
		}
		items = sale.Items

		ledger, err := s.openLedger(tx, productIDsOf(items))
		if err != nil {
			return err
		}
		if err := s.restore(tx, ledger, sale.ID, actor, items); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, sale.ID)
	})
	if txErr != nil {
		s.recordFailure("delete", txErr)
		return txErr
	}

	infra.SalesTotal.WithLabelValues("delete", "ok").Inc()
	countItems(infra.ItemsRestored, items)
	s.cache.Invalidate(ctx)
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, page dto.PageQuery) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{Data: make([]dto.SaleResponse, len(sales)), Total: total}
	for i := range sales {
		resp.Data[i] = *saleToResponse(&sales[i])
	}
	return resp, nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID, w io.Writer) error {
	sale, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return infra.WriteSaleReceipt(w, sale)
}

func (s *saleService) find(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("sale")
		}
		return nil, err
	}
	return sale, nil
}

// ── Stock ledger ──────────────────────────────────────────────────────────────

type poolKey struct {
	productID uuid.UUID
	material  model.Material
}

// poolLevel is the quantity a pool was left with after a sale took from it.
type poolLevel struct {
	product  *model.Product
	material model.Material
	quantity int
}

// ledger is the transaction's view of the locked stock rows. Quantities are
// kept in step with every adjustment made through it.
type ledger struct {
	stocks   map[uuid.UUID]*model.Stock
	products map[uuid.UUID]*model.Product
}

func (s *saleService) openLedger(tx *gorm.DB, ids []uuid.UUID) (*ledger, error) {
	ids = uniqueIDs(ids)
	stocks, err := s.stock.LockByProductIDsTx(tx, ids)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByIDsTx(tx, ids)
	if err != nil {
		return nil, err
	}
	return &ledger{stocks: stocks, products: products}, nil
}

// check verifies every line against its pool. Lines hitting the same pool are
// summed, and the error names the first line that overdraws it.
func (l *ledger) check(items []model.SaleItem) error {
	demand := make(map[poolKey]int, len(items))
	for _, item := range items {
		p, ok := l.products[item.ProductID]
		if !ok {
			return invalid("product %s does not exist", item.ProductID)
		}
		st, ok := l.stocks[item.ProductID]
		if !ok {
			infra.InsufficientStock.WithLabelValues(string(item.Material)).Inc()
			return &InsufficientStockError{Product: p.Name, Material: item.Material, Requested: item.Quantity, Missing: true}
		}
		key := poolKey{item.ProductID, item.Material}
		demand[key] += item.Quantity
		if available := st.Quantity(item.Material); demand[key] > available {
			infra.InsufficientStock.WithLabelValues(string(item.Material)).Inc()
			return &InsufficientStockError{Product: p.Name, Material: item.Material, Requested: demand[key], Available: available}
		}
	}
	return nil
}

// take decrements every pool the lines draw from and records the movements.
// It returns the pools left at or below the low-stock threshold.
func (s *saleService) take(tx *gorm.DB, l *ledger, saleID uuid.UUID, actor Actor, items []model.SaleItem) ([]poolLevel, error) {
	var low []poolLevel
	for _, d := range aggregate(items) {
		st := l.stocks[d.productID]
		if err := s.adjust(tx, st, d.material, -d.quantity, model.MovementSale, saleID, actor); err != nil {
			if errors.Is(err, repository.ErrStockGuard) {
				// a writer outside the row lock got there first
				return nil, &InsufficientStockError{
					Product:   l.products[d.productID].Name,
					Material:  d.material,
					Requested: d.quantity,
					Available: st.Quantity(d.material),
				}
			}
			return nil, err
		}
		if q := st.Quantity(d.material); q <= s.threshold {
			low = append(low, poolLevel{product: l.products[d.productID], material: d.material, quantity: q})
		}
	}
	return low, nil
}

// restore gives back the stock of items.
func (s *saleService) restore(tx *gorm.DB, l *ledger, saleID uuid.UUID, actor Actor, items []model.SaleItem) error {
	for _, d := range aggregate(items) {
		st, ok := l.stocks[d.productID]
		if !ok {
			return fmt.Errorf("restore stock: no stock record for product %s", d.productID)
		}
		if err := s.adjust(tx, st, d.material, d.quantity, model.MovementSaleRestore, saleID, actor); err != nil {
			return err
		}
	}
	return nil
}

func (s *saleService) adjust(tx *gorm.DB, st *model.Stock, m model.Material, delta int, kind string, saleID uuid.UUID, actor Actor) error {
	if err := s.stock.AdjustTx(tx, st.ProductID, m, delta); err != nil {
		return err
	}
	before := st.Quantity(m)
	st.SetQuantity(m, before+delta)

	mov := &model.StockMovement{
		ProductID:      st.ProductID,
		Material:       m,
		Kind:           kind,
		Delta:          delta,
		QuantityBefore: before,
		QuantityAfter:  before + delta,
		SaleID:         &saleID,
		CreatedAt:      s.now().UTC(),
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		mov.ActorID = &actorID
	}
	return s.movements.CreateTx(tx, mov)
}

type poolDemand struct {
	productID uuid.UUID
	material  model.Material
	quantity  int
}

// aggregate sums line quantities per pool, in first-seen order.
func aggregate(items []model.SaleItem) []poolDemand {
	var out []poolDemand
	index := make(map[poolKey]int, len(items))
	for _, item := range items {
		key := poolKey{item.ProductID, item.Material}
		if i, ok := index[key]; ok {
			out[i].quantity += item.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, poolDemand{productID: item.ProductID, material: item.Material, quantity: item.Quantity})
	}
	return out
}

// ── After commit ──────────────────────────────────────────────────────────────

func (s *saleService) afterCommit(ctx context.Context, saleID uuid.UUID, low []poolLevel) {
	s.cache.Invalidate(ctx)
	if s.alerts == nil {
		return
	}
	for _, p := range low {
		alert := worker.LowStockAlert{
			ProductID:   p.product.ID.String(),
			ProductName: p.product.Name,
			ProductCode: p.product.Code,
			Material:    string(p.material),
			Quantity:    p.quantity,
			Threshold:   s.threshold,
			SaleID:      saleID.String(),
		}
		// best-effort: the sale is already committed
		if err := s.alerts.EnqueueLowStockAlert(ctx, alert); err != nil {
			log.Warn().Err(err).Str("product", p.product.Name).Msg("sale: failed to enqueue low stock alert")
		}
	}
}

func (s *saleService) recordFailure(op string, err error) {
	outcome := "error"
	var stockErr *InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		outcome = "insufficient_stock"
	case errors.Is(err, ErrForbidden):
		outcome = "forbidden"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrValidation):
		outcome = "invalid"
	}
	infra.SalesTotal.WithLabelValues(op, outcome).Inc()
}

func countItems(c *prometheus.CounterVec, items []model.SaleItem) {
	for _, item := range items {
		c.WithLabelValues(string(item.Material)).Add(float64(item.Quantity))
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

var hundred = decimal.NewFromInt(100)

// buildSaleItems validates the request lines and turns them into items.
// Handlers already ran the struct validator; these checks keep the service
// safe for callers that did not.
func buildSaleItems(req dto.SaleRequest) ([]model.SaleItem, error) {
	if len(req.Sales) == 0 {
		return nil, invalid("a sale needs at least one item")
	}
	if req.GlobalDiscount.IsNegative() || req.GlobalDiscount.GreaterThan(hundred) {
		return nil, invalid("globalDiscount must be between 0 and 100")
	}
	items := make([]model.SaleItem, len(req.Sales))
	for i, line := range req.Sales {
		pid, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, invalid("item %d: invalid productId", i+1)
		}
		m, err := model.ParseMaterial(line.Material)
		if err != nil {
			return nil, invalid("item %d: %v", i+1, err)
		}
		if line.Qty < 1 {
			return nil, invalid("item %d: qty must be at least 1", i+1)
		}
		if line.Price.IsNegative() {
			return nil, invalid("item %d: price must not be negative", i+1)
		}
		if line.Discount.IsNegative() || line.Discount.GreaterThan(hundred) {
			return nil, invalid("item %d: discount must be between 0 and 100", i+1)
		}
		items[i] = model.SaleItem{
			ProductID:          pid,
			Material:           m,
			Quantity:           line.Qty,
			UnitPrice:          line.Price,
			DiscountPercentage: line.Discount,
			Position:           i,
		}
	}
	return items, nil
}

func productIDsOf(items []model.SaleItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return ids
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func attachProducts(items []model.SaleItem, products map[uuid.UUID]*model.Product) {
	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                  s.ID.String(),
		CustomerName:        s.CustomerName,
		CustomerPhone:       s.CustomerPhone,
		GlobalDiscount:      s.GlobalDiscount,
		TotalBeforeDiscount: s.TotalBeforeDiscount,
		TotalAfterDiscount:  s.TotalAfterDiscount,
		CreatedAt:           formatTime(s.CreatedAt),
		UpdatedAt:           formatTime(s.UpdatedAt),
		Sales:               make([]dto.SaleItemResponse, len(s.Items)),
	}
	if s.CreatedByID != nil {
		id := s.CreatedByID.String()
		resp.CreatedByID = &id
	}
	for i, item := range s.Items {
		r := dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Material:  string(item.Material),
			Qty:       item.Quantity,
			Price:     item.UnitPrice,
			Discount:  item.DiscountPercentage,
		}
		if item.Product != nil {
			r.ProductName = item.Product.Name
		}
		resp.Sales[i] = r
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
