package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Weight and unit price are declared separately for
// every material the piece can be made of.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"index;not null"`
	Code         string          `gorm:"uniqueIndex;not null"`
	WeightGold   decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	WeightSilver decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	WeightCopper decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	PriceGold    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceSilver  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceCopper  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Stock *Stock `gorm:"foreignKey:ProductID"`
}

// MaterialSpec is the weight and unit price of a product in one material.
type MaterialSpec struct {
	Weight decimal.Decimal
	Price  decimal.Decimal
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// productSpecs maps each material to its weight and price columns.
var productSpecs = map[Material]func(*Product) (weight, price *decimal.Decimal){
	MaterialGold:   func(p *Product) (*decimal.Decimal, *decimal.Decimal) { return &p.WeightGold, &p.PriceGold },
	MaterialSilver: func(p *Product) (*decimal.Decimal, *decimal.Decimal) { return &p.WeightSilver, &p.PriceSilver },
	MaterialCopper: func(p *Product) (*decimal.Decimal, *decimal.Decimal) { return &p.WeightCopper, &p.PriceCopper },
}

func (p *Product) Spec(m Material) MaterialSpec {
	cols, ok := productSpecs[m]
	if !ok {
		return MaterialSpec{Weight: decimal.Zero, Price: decimal.Zero}
	}
	weight, price := cols(p)
	return MaterialSpec{Weight: *weight, Price: *price}
}

func (p *Product) SetSpec(m Material, s MaterialSpec) {
	if cols, ok := productSpecs[m]; ok {
		weight, price := cols(p)
		*weight, *price = s.Weight, s.Price
	}
}
