package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/GTDGit/bakery_storefront/internal/config"
	"github.com/GTDGit/bakery_storefront/internal/models"
)

func testOrder() *models.OrderRequest {
	return &models.OrderRequest{
		Customer: validCustomer(),
		Items: []models.OrderItem{{
			CakeID: "truffle", Title: "Chocolate Truffle", SelectedWeight: "1 Kg", SelectedFlavor: "Vanilla",
			Quantity: 2, Price: 450,
			Customization: &models.Customization{Message: "Happy <b>birthday</b>"},
		}},
		Totals:        models.OrderTotals{Subtotal: 900, ExtraCharges: 40, GrandTotal: 940},
		ItemCount:     2,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodCOD,
	}
}

func TestMailService_Enabled(t *testing.T) {
	assert.False(t, NewMailService(config.SMTPConfig{}).Enabled())
	assert.True(t, NewMailService(config.SMTPConfig{Host: "smtp.example.com"}).Enabled())
}

func TestMailService_BuildOrderMessage(t *testing.T) {
	svc := NewMailService(config.SMTPConfig{Host: "smtp.example.com", From: "orders@bakery.test"})

	msg, err := svc.buildOrderMessage("order-42", testOrder())
	require.NoError(t, err)

	assert.Equal(t, []string{"Your cake order order-42"}, msg.GetGenHeader(mail.HeaderSubject))
	to := msg.GetTo()
	require.Len(t, to, 1)
	assert.Equal(t, "asha@example.com", to[0].Address)
	assert.Equal(t, []string{"<asha@example.com>"}, msg.GetToString())

	parts := msg.GetParts()
	require.Len(t, parts, 1)
	body, err := parts[0].GetContent()
	require.NoError(t, err)
	html := string(body)
	assert.Contains(t, html, "order-42")
	assert.Contains(t, html, "Chocolate Truffle")
	assert.Contains(t, html, "900.00")
	assert.Contains(t, html, "940.00")
	assert.Contains(t, html, "Happy &lt;b&gt;birthday&lt;/b&gt;")
}

func TestMailService_BuildOrderMessageRejectsBadSender(t *testing.T) {
	svc := NewMailService(config.SMTPConfig{Host: "smtp.example.com", From: "not an address"})
	_, err := svc.buildOrderMessage("order-42", testOrder())
	assert.Error(t, err)
}
