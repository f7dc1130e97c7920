package model

import "fmt"

// Material is one of the metals a product can be sold in. Each material has its
// own stock pool, unit price and weight.
type Material string

const (
	MaterialGold   Material = "gold"
	MaterialSilver Material = "silver"
	MaterialCopper Material = "copper"
)

// Materials lists every material in display order.
var Materials = []Material{MaterialGold, MaterialSilver, MaterialCopper}

// ParseMaterial validates a raw material name.
func ParseMaterial(s string) (Material, error) {
	m := Material(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown material %q", s)
	}
	return m, nil
}

func (m Material) Valid() bool {
	_, ok := stockPools[m]
	return ok
}

// QuantityColumn is the stocks column holding the pool for m.
func (m Material) QuantityColumn() string { return "quantity_" + string(m) }
