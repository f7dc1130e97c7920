package model

// All lists every persisted model, in dependency order, for schema migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Stock{},
		&Sale{},
		&SaleItem{},
		&Expense{},
		&StockMovement{},
	}
}
