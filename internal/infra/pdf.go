package infra

// pdf.go renders a sale receipt with go-pdf/fpdf: a narrow page holding the
// shop header, sale reference and timestamp, one row per line item, the
// global discount and the totals.

import (
	"fmt"
	"io"
	"unicode/utf8"

	"jewelshop/internal/model"

	"github.com/go-pdf/fpdf"
)

const receiptShopName = "Jewelry Shop"

// WriteSaleReceipt writes a PDF receipt for sale to w. Items are expected to
// carry their Product for the name column.
func WriteSaleReceipt(w io.Writer, sale *model.Sale) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 140 + 6*float64(len(sale.Items))},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, receiptShopName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sale receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Ref. "+sale.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, sale.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if sale.CustomerName != nil && *sale.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Customer: "+*sale.CustomerName), "", 1, "L", false, 0, "")
	}
	if sale.CustomerPhone != nil && *sale.CustomerPhone != "" {
		pdf.CellFormat(contentW, 4, "Phone: "+*sale.CustomerPhone, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	colName := contentW * 0.40
	colMat := contentW * 0.16
	colQty := contentW * 0.12
	colAmt := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(colName, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colMat, 5, "Metal", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colAmt, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.ProductID.String()[:8]
		if item.Product != nil {
			name = item.Product.Name
		}
		if utf8.RuneCountInString(name) > 20 {
			name = string([]rune(name)[:19]) + "."
		}
		amount := item.Total()
		pdf.CellFormat(colName, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colMat, 5, string(item.Material), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colAmt, 5, amount.StringFixed(2), "", 1, "R", false, 0, "")
		if !item.DiscountPercentage.IsZero() {
			pdf.CellFormat(colName+colMat+colQty, 4, "  discount "+item.DiscountPercentage.String()+"%", "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	labelW := colName + colMat + colQty
	pdf.SetFont("Helvetica", "", 7)
	if !sale.GlobalDiscount.IsZero() {
		pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmt, 5, sale.TotalBeforeDiscount.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(labelW, 5, "Discount ("+sale.GlobalDiscount.String()+"%):", "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmt, 5, "-"+sale.TotalBeforeDiscount.Sub(sale.TotalAfterDiscount).StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colAmt, 6, sale.TotalAfterDiscount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt: %w", err)
	}
	return nil
}
