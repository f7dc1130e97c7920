package infra

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"jewelshop/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const productSheetName = "Products"

// ProductSheetRow is one product line of the import spreadsheet.
type ProductSheetRow struct {
	Line  int // 1-based spreadsheet row, for error messages
	Name  string
	Code  string
	Specs map[model.Material]ProductSheetSpec
}

type ProductSheetSpec struct {
	Price    decimal.Decimal
	Weight   decimal.Decimal
	Quantity int
}

// ProductSheetHeader is the header row of the import template: name, code and
// then price/weight/qty for every material.
func ProductSheetHeader() []string {
	header := []string{"productName", "productCode"}
	for _, m := range model.Materials {
		header = append(header, "price_"+string(m), "weight_"+string(m), "qty_"+string(m))
	}
	return header
}

// WriteProductSheet writes an .xlsx workbook holding the header row followed by
// rows. A nil rows slice produces the empty import template.
func WriteProductSheet(w io.Writer, rows []ProductSheetRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", productSheetName); err != nil {
		return err
	}

	header := ProductSheetHeader()
	if err := setRow(f, 1, toCells(header)); err != nil {
		return err
	}
	for i, r := range rows {
		cells := []interface{}{r.Name, r.Code}
		for _, m := range model.Materials {
			s := r.Specs[m]
			cells = append(cells, s.Price.InexactFloat64(), s.Weight.InexactFloat64(), s.Quantity)
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(productSheetName, cell, &cells)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// ReadProductSheet parses the first sheet of an .xlsx workbook. Columns are
// located by header name so their order does not matter; missing numeric
// cells read as zero. Blank lines are skipped.
func ReadProductSheet(r io.Reader) ([]ProductSheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: missing header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"productName", "productCode"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("xlsx: missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []ProductSheetRow
	for n, row := range rows[1:] {
		line := n + 2
		name, code := cell(row, "productName"), cell(row, "productCode")
		if name == "" && code == "" {
			continue
		}
		pr := ProductSheetRow{Line: line, Name: name, Code: code, Specs: make(map[model.Material]ProductSheetSpec, len(model.Materials))}
		for _, m := range model.Materials {
			var spec ProductSheetSpec
			if spec.Price, err = parseDecimalCell(cell(row, "price_"+string(m))); err != nil {
				return nil, fmt.Errorf("xlsx: row %d price_%s: %w", line, m, err)
			}
			if spec.Weight, err = parseDecimalCell(cell(row, "weight_"+string(m))); err != nil {
				return nil, fmt.Errorf("xlsx: row %d weight_%s: %w", line, m, err)
			}
			if spec.Quantity, err = parseIntCell(cell(row, "qty_"+string(m))); err != nil {
				return nil, fmt.Errorf("xlsx: row %d qty_%s: %w", line, m, err)
			}
			pr.Specs[m] = spec
		}
		out = append(out, pr)
	}
	return out, nil
}

func parseDecimalCell(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func parseIntCell(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// spreadsheets happily store 3 as "3.0"
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(d.IntPart()), nil
}
