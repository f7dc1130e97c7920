package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MovementSale        = "sale"
	MovementSaleRestore = "sale_restore"
	MovementOverride    = "override"
)

// StockMovement records every change to a stock pool. Rows are written in the
// same transaction as the change and are never updated.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Material       Material   `gorm:"type:varchar(10);not null"`
	Kind           string     `gorm:"type:varchar(20);not null"` // "sale" | "sale_restore" | "override"
	Delta          int        `gorm:"not null"`                  // positive = in, negative = out
	QuantityBefore int        `gorm:"not null"`
	QuantityAfter  int        `gorm:"not null"`
	SaleID         *uuid.UUID `gorm:"type:uuid;index"`
	ActorID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
