package repository

import (
	"context"
	"time"

	"jewelshop/internal/dto"
	"jewelshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, page dto.PageQuery) ([]model.Sale, int64, error)
	// ListBetween returns every sale created in [start, end) with its items
	// and their products.
	ListBetween(ctx context.Context, start, end time.Time) ([]model.Sale, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, s *model.Sale) error
	// FindByIDTx loads the sale and its items with the sale row locked, so two
	// transactions cannot both restore the stock of the same sale.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	UpdateTx(tx *gorm.DB, s *model.Sale) error
	ReplaceItemsTx(tx *gorm.DB, saleID uuid.UUID, items []model.SaleItem) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func withItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sale_items.position ASC")
	}).Preload("Items.Product")
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := withItems(r.db.WithContext(ctx)).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_items.position ASC")
		}).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, page dto.PageQuery) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if page.Search != "" {
		pattern := likePattern(page.Search)
		q = q.Where("LOWER(customer_name) LIKE ? OR LOWER(customer_phone) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := paginate(withItems(q).Order("created_at DESC"), page).Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListBetween(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := withItems(r.db.WithContext(ctx)).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	items := s.Items
	if err := tx.Omit("Items", "CreatedBy").Create(s).Error; err != nil {
		return err
	}
	if err := r.ReplaceItemsTx(tx, s.ID, items); err != nil {
		return err
	}
	s.Items = items
	return nil
}

func (r *saleRepo) UpdateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Model(&model.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"customer_name":         s.CustomerName,
		"customer_phone":        s.CustomerPhone,
		"global_discount":       s.GlobalDiscount,
		"total_before_discount": s.TotalBeforeDiscount,
		"total_after_discount":  s.TotalAfterDiscount,
		"updated_at":            s.UpdatedAt,
	}).Error
}

// ReplaceItemsTx drops the sale's current line items and inserts the given
// ones in order.
func (r *saleRepo) ReplaceItemsTx(tx *gorm.DB, saleID uuid.UUID, items []model.SaleItem) error {
	if err := tx.Where("sale_id = ?", saleID).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].SaleID = saleID
		items[i].Position = i
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Omit("Product").Create(&items).Error
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("sale_id = ?", id).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&model.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
