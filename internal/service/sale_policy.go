package service

import (
	"fmt"
	"time"

	"jewelshop/internal/model"
)

// DefaultEditWindow is how long a non-admin creator may edit or delete a sale.
const DefaultEditWindow = 24 * time.Hour

// CanModify decides whether actor may update or delete sale at instant now.
// Admins always may. Anyone else must be the creator, and the sale must be at
// most window old.
func CanModify(sale *model.Sale, actor Actor, now time.Time, window time.Duration) error {
	if actor.IsAdmin() {
		return nil
	}
	if sale.CreatedByID == nil || *sale.CreatedByID != actor.ID {
		return fmt.Errorf("%w: You can only modify your own sales", ErrForbidden)
	}
	if now.Sub(sale.CreatedAt) > window {
		return fmt.Errorf("%w: You can no longer edit this sale (time limit expired)", ErrForbidden)
	}
	return nil
}
