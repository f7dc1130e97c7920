package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialAccessorsCoverEveryMaterial(t *testing.T) {
	for i, m := range Materials {
		t.Run(string(m), func(t *testing.T) {
			var st Stock
			st.SetQuantity(m, i+7)
			assert.Equal(t, i+7, st.Quantity(m))
			for _, other := range Materials {
				if other != m {
					assert.Zero(t, st.Quantity(other), "setting %s leaks into %s", m, other)
				}
			}

			var p Product
			spec := MaterialSpec{Weight: decimal.NewFromInt(int64(i + 1)), Price: decimal.NewFromInt(int64(100 * (i + 1)))}
			p.SetSpec(m, spec)
			got := p.Spec(m)
			assert.True(t, spec.Weight.Equal(got.Weight))
			assert.True(t, spec.Price.Equal(got.Price))
		})
	}
}

func TestMaterialAccessors_UnknownMaterial(t *testing.T) {
	st := Stock{QuantityGold: 4}
	st.SetQuantity("platinum", 9)
	assert.Zero(t, st.Quantity("platinum"))
	assert.Equal(t, 4, st.QuantityGold)

	p := Product{PriceGold: decimal.NewFromInt(100)}
	assert.True(t, p.Spec("platinum").Price.IsZero())

	_, err := ParseMaterial("platinum")
	require.Error(t, err)
	m, err := ParseMaterial("silver")
	require.NoError(t, err)
	assert.Equal(t, MaterialSilver, m)
}
