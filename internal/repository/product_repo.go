package repository

import (
	"context"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, page dto.PageQuery) ([]model.Product, int64, error)
	SearchNames(ctx context.Context, search string) ([]model.Product, error)
	ListWithStock(ctx context.Context) ([]model.Product, error)
	// CountSaleItems reports how many sale lines reference the product.
	CountSaleItems(ctx context.Context, id uuid.UUID) (int64, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Product) error
	UpdateTx(tx *gorm.DB, p *model.Product) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Stock").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	return &p, err
}

func (r *productRepo) searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if search == "" {
			return q
		}
		pattern := likePattern(search)
		return q.Where("LOWER(products.name) LIKE ? OR LOWER(products.code) LIKE ?", pattern, pattern)
	}
}

func (r *productRepo) List(ctx context.Context, page dto.PageQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(r.searchScope(page.Search))
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := paginate(q.Preload("Stock").Order("created_at DESC"), page).Find(&products).Error
	return products, total, err
}

func (r *productRepo) SearchNames(ctx context.Context, search string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Select("id", "name", "code").
		Scopes(r.searchScope(search)).
		Preload("Stock").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListWithStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Stock").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) CountSaleItems(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).Where("product_id = ?", id).Count(&n).Error
	return n, err
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Stock").Create(p).Error
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Stock", "CreatedAt").Save(p).Error
}

func (r *productRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) FindByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	var products []model.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}
