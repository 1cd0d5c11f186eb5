package service

import (
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/models"
)

var orderMailTemplate = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"line":  func(it models.OrderItem) float64 { return it.Price * float64(it.Quantity) },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Thank you for your order, {{.Customer.Name}}!</h2>
	<p>Order <strong>{{.OrderID}}</strong> is {{.Status}}. Payment: {{.PaymentMethod}}.</p>
	<p>Delivery on {{.Customer.DeliveryDate}}{{if .Customer.DeliveryTime}} ({{.Customer.DeliveryTime}}){{end}} to
	{{.Customer.Address}}, {{.Customer.City}} {{.Customer.Pincode}}.</p>
	<table style="border-collapse: collapse;">
		<tr><th align="left">Cake</th><th>Options</th><th>Qty</th><th align="right">Price</th></tr>
		{{range .Items}}
		<tr>
			<td>{{.Title}}</td>
			<td>{{.SelectedWeight}}{{if .SelectedFlavor}} / {{.SelectedFlavor}}{{end}}{{if .Customization}}{{if .Customization.Message}}<br><em>"{{.Customization.Message}}"</em>{{end}}{{end}}</td>
			<td align="center">{{.Quantity}}</td>
			<td align="right">{{money (line .)}}</td>
		</tr>
		{{end}}
	</table>
	<p>Subtotal: {{money .Totals.Subtotal}}<br>
	Delivery: {{money .Totals.ExtraCharges}}<br>
	<strong>Total: {{money .Totals.GrandTotal}}</strong></p>
</body>
</html>`))

type orderMailData struct {
	*models.OrderRequest
	OrderID string
}

// MailService sends order confirmation mails over SMTP.
type MailService struct {
	cfg config.SMTPConfig
}

// NewMailService constructs a MailService. It is disabled without an SMTP host.
func NewMailService(cfg config.SMTPConfig) *MailService {
	return &MailService{cfg: cfg}
}

// Enabled reports whether SMTP is configured.
func (s *MailService) Enabled() bool {
	return s.cfg.Host != ""
}

// SendOrderConfirmation mails the order summary to the customer.
func (s *MailService) SendOrderConfirmation(ctx context.Context, orderID string, order *models.OrderRequest) error {
	msg, err := s.buildOrderMessage(orderID, order)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func (s *MailService) buildOrderMessage(orderID string, order *models.OrderRequest) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(order.Customer.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("Your cake order %s", orderID))
	if err := msg.SetBodyHTMLTemplate(orderMailTemplate, orderMailData{OrderRequest: order, OrderID: orderID}); err != nil {
		return nil, fmt.Errorf("failed to render mail: %w", err)
	}
	return msg, nil
}
