package infra

import (
	"bytes"
	"testing"

	"jewelshop/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteProductSheet_TemplateHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProductSheet(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(productSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"productName", "productCode",
		"price_gold", "weight_gold", "qty_gold",
		"price_silver", "weight_silver", "qty_silver",
		"price_copper", "weight_copper", "qty_copper",
	}, rows[0])
}

func TestReadProductSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	// columns deliberately out of template order, copper columns omitted
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"productCode", "productName", "qty_gold", "price_gold", "weight_gold", "qty_silver"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"R-01", "Ring", 4, "120.50", 3.2, "2.0"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"N-01", "Necklace"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := ReadProductSheet(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ring := rows[0]
	assert.Equal(t, 2, ring.Line)
	assert.Equal(t, "Ring", ring.Name)
	assert.Equal(t, "R-01", ring.Code)
	assert.Equal(t, 4, ring.Specs[model.MaterialGold].Quantity)
	assert.True(t, decimal.RequireFromString("120.5").Equal(ring.Specs[model.MaterialGold].Price))
	assert.True(t, decimal.RequireFromString("3.2").Equal(ring.Specs[model.MaterialGold].Weight))
	assert.Equal(t, 2, ring.Specs[model.MaterialSilver].Quantity)
	assert.Equal(t, 0, ring.Specs[model.MaterialCopper].Quantity)

	assert.Equal(t, 4, rows[1].Line)
	assert.True(t, rows[1].Specs[model.MaterialGold].Price.IsZero())
}

func TestReadProductSheet_RejectsBadQuantity(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"productName", "productCode", "qty_gold"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Ring", "R-01", "1.5"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = ReadProductSheet(&buf)
	assert.ErrorContains(t, err, "row 2 qty_gold")
}

func TestReadProductSheet_MissingHeader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "code"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	_, err = ReadProductSheet(&buf)
	assert.ErrorContains(t, err, `missing column "productName"`)
}
