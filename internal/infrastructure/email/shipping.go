package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const shippingTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; color: #2b2b2b;">
  <h1>Your order {{ .DisplayID }} is on its way</h1>
  <p>Hi {{ .Greeting }},</p>
  <p>Good news: your order has shipped.</p>
  <p><strong>Tracking number:</strong> {{ .TrackingNumber }}</p>
  {{- if .Items }}
  <table cellpadding="6" style="border-collapse: collapse;">
    {{- range .Items }}
    <tr>
      <td>{{ .ProductName }}{{ if .VariantSize }} ({{ .VariantSize }}){{ end }}</td>
      <td>x{{ .Quantity }}</td>
      <td>{{ money .LineTotal }}</td>
    </tr>
    {{- end }}
  </table>
  {{- end }}
  <p><strong>Order total:</strong> {{ money .Total }}</p>
  <p>Status: {{ title .Status }}</p>
  <p>Thank you for shopping with Burbar.</p>
</body>
</html>
`

var shippingTmpl = template.Must(template.New("shipping").Funcs(template.FuncMap{
	"money": formatMoney,
	"title": titleCase,
}).Parse(shippingTemplate))

type shippingView struct {
	DisplayID      string
	Greeting       string
	TrackingNumber string
	Items          []order.OrderItem
	Total          decimal.Decimal
	Status         string
}

// RenderShipped renders the subject and HTML body of a shipping notification
func RenderShipped(o *order.Order) (subject, html string, err error) {
	greeting := strings.TrimSpace(o.CustomerName)
	if greeting == "" {
		greeting = "there"
	}
	view := shippingView{
		DisplayID:      order.DisplayID(o.ID),
		Greeting:       greeting,
		TrackingNumber: o.TrackingNumber,
		Items:          o.Items,
		Total:          o.Total,
		Status:         o.Status.String(),
	}

	var buf bytes.Buffer
	if err := shippingTmpl.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("email: render shipping notification: %w", err)
	}
	return fmt.Sprintf("Your order %s has shipped", view.DisplayID), buf.String(), nil
}

// ShippingNotifier emails customers when their order ships
type ShippingNotifier struct {
	mailer Mailer
}

// NewShippingNotifier creates a notifier sending through mailer
func NewShippingNotifier(mailer Mailer) *ShippingNotifier {
	return &ShippingNotifier{mailer: mailer}
}

// NotifyShipped sends the shipping notification for o
func (n *ShippingNotifier) NotifyShipped(ctx context.Context, o *order.Order) error {
	subject, html, err := RenderShipped(o)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{To: o.Email, Subject: subject, HTML: html})
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// titleCase turns "SHIPPED" into "Shipped"
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
