package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a completed customer purchase. Discounts are percentages; totals are
// computed when the sale is written and stored denormalized for reporting.
type Sale struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerName        *string         `gorm:"index"`
	CustomerPhone       *string         `gorm:"index"`
	CreatedByID         *uuid.UUID      `gorm:"type:uuid;index"`
	GlobalDiscount      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalBeforeDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAfterDiscount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt           time.Time       `gorm:"index"`
	UpdatedAt           time.Time

	Items     []SaleItem `gorm:"foreignKey:SaleID"`
	CreatedBy *User      `gorm:"foreignKey:CreatedByID"`
}

// SaleItem is one line of a sale. Items are owned by their sale and are replaced
// wholesale when the sale is edited.
type SaleItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Material           Material        `gorm:"type:varchar(10);not null"`
	Quantity           int             `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Position           int             `gorm:"not null;default:0"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

var hundred = decimal.NewFromInt(100)

// ApplyDiscount returns amount reduced by pct percent, rounded to cents.
func ApplyDiscount(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
}

// Total is unit price × quantity less the line discount.
func (i *SaleItem) Total() decimal.Decimal {
	return ApplyDiscount(i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))), i.DiscountPercentage)
}

// ComputeTotals sets TotalBeforeDiscount to the sum of the line totals and
// TotalAfterDiscount to that sum less the global discount.
func (s *Sale) ComputeTotals() {
	before := decimal.Zero
	for i := range s.Items {
		before = before.Add(s.Items[i].Total())
	}
	s.TotalBeforeDiscount = before
	s.TotalAfterDiscount = ApplyDiscount(before, s.GlobalDiscount)
}
