package repository

import (
	"context"
	"errors"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockGuard is returned by AdjustTx when a decrement would take a pool
// below zero. The guard re-checks availability in the UPDATE itself.
var ErrStockGuard = errors.New("stock pool below requested quantity")

const defaultLowStockThreshold = 5

type StockRepository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*model.Stock, error)
	List(ctx context.Context, filter dto.StockFilter) ([]model.Stock, int64, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, s *model.Stock) error
	// LockByProductIDsTx loads and row-locks (SELECT … FOR UPDATE) the stock of
	// every listed product, keyed by product id. Locks are taken in product id
	// order so concurrent sales cannot deadlock.
	LockByProductIDsTx(tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]*model.Stock, error)
	// AdjustTx adds delta to the pool of one material. Negative deltas only
	// apply when the pool holds at least -delta units.
	AdjustTx(tx *gorm.DB, productID uuid.UUID, m model.Material, delta int) error
	SetQuantitiesTx(tx *gorm.DB, s *model.Stock) error
	DeleteByProductTx(tx *gorm.DB, productID uuid.UUID) error

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) FindByProductID(ctx context.Context, productID uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Preload("Product").Where("product_id = ?", productID).First(&s).Error
	return &s, err
}

func (r *stockRepo) List(ctx context.Context, filter dto.StockFilter) ([]model.Stock, int64, error) {
	var stocks []model.Stock
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Stock{}).
		Joins("JOIN products ON products.id = stocks.product_id")

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.code) LIKE ?", pattern, pattern)
	}

	threshold := defaultLowStockThreshold
	if filter.Threshold != nil {
		threshold = *filter.Threshold
	}
	flagged := map[model.Material]bool{
		model.MaterialGold:   filter.Gold,
		model.MaterialSilver: filter.Silver,
		model.MaterialCopper: filter.Copper,
	}
	var low *gorm.DB
	for _, m := range model.Materials {
		if !flagged[m] {
			continue
		}
		cond := clause.Lte{Column: clause.Column{Table: "stocks", Name: m.QuantityColumn()}, Value: threshold}
		if low == nil {
			low = r.db.Where(cond)
		} else {
			low = low.Or(cond)
		}
	}
	if low != nil {
		q = q.Where(low)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := paginate(q.Preload("Product").Order("products.name ASC"), filter.PageQuery).Find(&stocks).Error
	return stocks, total, err
}

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Omit("Product").Create(s).Error
}

func (r *stockRepo) LockByProductIDsTx(tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]*model.Stock, error) {
	out := make(map[uuid.UUID]*model.Stock, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var stocks []model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ?", productIDs).
		Order("product_id").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	for i := range stocks {
		out[stocks[i].ProductID] = &stocks[i]
	}
	return out, nil
}

func (r *stockRepo) AdjustTx(tx *gorm.DB, productID uuid.UUID, m model.Material, delta int) error {
	col := m.QuantityColumn()
	q := tx.Model(&model.Stock{}).Where("product_id = ?", productID)
	if delta < 0 {
		q = q.Where(col+" >= ?", -delta)
	}
	res := q.Update(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return ErrStockGuard
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockRepo) SetQuantitiesTx(tx *gorm.DB, s *model.Stock) error {
	res := tx.Model(&model.Stock{}).Where("product_id = ?", s.ProductID).Updates(map[string]interface{}{
		model.MaterialGold.QuantityColumn():   s.QuantityGold,
		model.MaterialSilver.QuantityColumn(): s.QuantitySilver,
		model.MaterialCopper.QuantityColumn(): s.QuantityCopper,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockRepo) DeleteByProductTx(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.Stock{}).Error
}
