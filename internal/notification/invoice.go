package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"pink-basket/internal/model"
	"pink-basket/pkg/money"
)

type invoiceLine struct {
	Name     string
	Quantity int
	Subtotal string
}

type invoice struct {
	StoreName      string
	CustomerName   string
	OrderID        uint
	Date           string
	Lines          []invoiceLine
	Total          string
	PaymentMethod  string
	ShopURL        string
	SupportAddress string
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<body style="background-color:#f6f9fc;font-family:Helvetica,Arial,sans-serif;">
<div style="background-color:#ffffff;margin:0 auto;max-width:600px;padding:0 0 48px;">
  <div style="background-color:#ec4899;padding:24px;text-align:center;">
    <h1 style="color:#ffffff;margin:0;">{{.StoreName}}</h1>
    <p style="color:#ffffff;">Your order has been confirmed!</p>
  </div>
  <div style="padding:24px;">
    <p>Hello {{.CustomerName}},</p>
    <p>Thanks for shopping with {{.StoreName}}. We've received your order and it's being processed.</p>
    <p><strong>Order ID:</strong> #{{.OrderID}}<br><strong>Date:</strong> {{.Date}}<br><strong>Payment:</strong> {{.PaymentMethod}}</p>
    <h3>Order Summary</h3>
    <table style="width:100%;border-collapse:collapse;">
      {{- range .Lines}}
      <tr style="border-bottom:1px solid #e5e7eb;">
        <td>{{.Name}}<br><small>Qty: {{.Quantity}}</small></td>
        <td style="text-align:right;">{{.Subtotal}}</td>
      </tr>
      {{- end}}
    </table>
    <p style="text-align:right;font-weight:bold;">Total: {{.Total}}</p>
  </div>
  <div style="text-align:center;">
    <a href="{{.ShopURL}}" style="background-color:#ec4899;color:#ffffff;padding:12px 20px;text-decoration:none;border-radius:6px;">Continue Shopping</a>
  </div>
  <p style="color:#8898aa;font-size:12px;text-align:center;">Need help? Contact us at {{.SupportAddress}}</p>
</div>
</body>
</html>
`))

func newInvoice(order *model.Order, opts Options) invoice {
	inv := invoice{
		StoreName:      opts.StoreName,
		CustomerName:   order.CustomerName,
		OrderID:        order.ID,
		Date:           order.CreatedAt.In(time.UTC).Format("2 January 2006"),
		Total:          money.Format(order.TotalCents, opts.Currency),
		PaymentMethod:  order.PaymentMethod,
		ShopURL:        opts.ShopURL,
		SupportAddress: opts.SupportAddress,
	}
	for _, line := range order.Lines() {
		inv.Lines = append(inv.Lines, invoiceLine{
			Name:     line.Name,
			Quantity: line.Quantity,
			Subtotal: money.Format(line.SubtotalCents(), opts.Currency),
		})
	}
	return inv
}

func (inv invoice) subject() string {
	return fmt.Sprintf("Order Confirmation #%d - %s", inv.OrderID, inv.StoreName)
}

func (inv invoice) html() (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, inv); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (inv invoice) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", inv.CustomerName)
	fmt.Fprintf(&b, "Thanks for shopping with %s. Order #%d, %s.\n\n", inv.StoreName, inv.OrderID, inv.Date)
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "%d x %s  %s\n", l.Quantity, l.Name, l.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\nNeed help? %s\n", inv.Total, inv.SupportAddress)
	return b.String()
}
