package pdf

import (
	"bytes"
	"fmt"

	"freshmart/internal/domain/model"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// 列幅(mm)。Item/Qty/Price/Total。
var invoiceColumns = []float64{95, 20, 35, 40}

// 請求書PDFを作る
type InvoiceRenderer struct{}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{}
}

func (r *InvoiceRenderer) Render(order model.Order, customer model.User) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("FreshMart Invoice", false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "FreshMart Invoice", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, "Order ID: "+order.ID, "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Date: "+order.CreatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Customer: "+customer.Name, "", 1, "L", false, 0, "")
	if customer.Email != "" {
		doc.CellFormat(0, 6, "Email: "+customer.Email, "", 1, "L", false, 0, "")
	}
	doc.CellFormat(0, 6, fmt.Sprintf("Payment: %s (%s)", order.PaymentMethod, order.PaymentStatus), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Status: "+string(order.Status), "", 1, "L", false, 0, "")
	doc.Ln(3)

	//配送先
	a := order.DeliveryAddress
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 6, "Deliver to", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 5, fmt.Sprintf("%s\n%s\n%s, %s - %s\nPhone: %s",
		a.FullName, a.Address, a.City, a.State, a.Pincode, a.Phone), "", "L", false)
	doc.Ln(4)

	//明細
	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(230, 240, 230)
	for i, h := range []string{"Item", "Qty", "Price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(invoiceColumns[i], 8, h, "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 11)
	for _, it := range order.Items {
		doc.CellFormat(invoiceColumns[0], 7, it.ProductName, "1", 0, "L", false, 0, "")
		doc.CellFormat(invoiceColumns[1], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(invoiceColumns[2], 7, "Rs. "+it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		doc.CellFormat(invoiceColumns[3], 7, "Rs. "+it.LineTotal().StringFixed(2), "1", 0, "R", false, 0, "")
		doc.Ln(-1)
	}

	doc.SetFont("Helvetica", "B", 12)
	labelWidth := invoiceColumns[0] + invoiceColumns[1] + invoiceColumns[2]
	doc.CellFormat(labelWidth, 8, "Total Amount", "1", 0, "R", false, 0, "")
	doc.CellFormat(invoiceColumns[3], 8, "Rs. "+order.TotalAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	doc.Ln(8)
	doc.SetFont("Helvetica", "I", 10)
	doc.CellFormat(0, 6, "Thank you for shopping with FreshMart!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render invoice pdf")
	}
	return buf.Bytes(), nil
}
