package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock holds the available quantity of a product per material. There is exactly
// one row per product; quantities never go below zero after a committed sale.
type Stock struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	QuantityGold   int       `gorm:"not null;default:0"`
	QuantitySilver int       `gorm:"not null;default:0"`
	QuantityCopper int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (s *Stock) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// stockPools maps each material to its quantity column on a Stock.
var stockPools = map[Material]func(*Stock) *int{
	MaterialGold:   func(s *Stock) *int { return &s.QuantityGold },
	MaterialSilver: func(s *Stock) *int { return &s.QuantitySilver },
	MaterialCopper: func(s *Stock) *int { return &s.QuantityCopper },
}

// Quantity is the pool for m; unknown materials hold nothing.
func (s *Stock) Quantity(m Material) int {
	if pool, ok := stockPools[m]; ok {
		return *pool(s)
	}
	return 0
}

func (s *Stock) SetQuantity(m Material, q int) {
	if pool, ok := stockPools[m]; ok {
		*pool(s) = q
	}
}
