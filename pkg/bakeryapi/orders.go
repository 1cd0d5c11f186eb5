package bakeryapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// ErrNoOrderID is returned when an order was accepted but the answer carried
// no identifier.
var ErrNoOrderID = errors.New("bakery api: order response without id")

// CreateOrder submits an order and returns its identifier.
func (c *Client) CreateOrder(ctx context.Context, order *models.OrderRequest) (string, error) {
	var resp map[string]any
	if err := c.doRequest(ctx, http.MethodPost, "/orders", "", order, &resp); err != nil {
		return "", err
	}
	id := extractID(resp)
	if id == "" {
		return "", ErrNoOrderID
	}
	return id, nil
}

// GetOrder returns a single order. Token may be empty for public tracking.
func (c *Client) GetOrder(ctx context.Context, token, id string) (*models.Order, error) {
	var resp oneOf[models.Order]
	if err := c.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// ListOrders returns every order. Requires an admin token.
func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var resp listOf[models.Order]
	if err := c.doRequest(ctx, http.MethodGet, "/orders", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []models.Order{}, nil
	}
	return resp.Items, nil
}

// UpdateOrderStatus changes the fulfilment status of an order.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, id string, status models.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.doRequest(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/status", token, body, nil)
}

// UpdatePaymentStatus changes the payment status of an order.
func (c *Client) UpdatePaymentStatus(ctx context.Context, token, id string, status models.PaymentStatus) error {
	body := map[string]string{"paymentStatus": string(status)}
	return c.doRequest(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/payment-status", token, body, nil)
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), token, nil, nil)
}
