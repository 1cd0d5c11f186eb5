package bakeryapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// ListCakes returns the whole catalog.
func (c *Client) ListCakes(ctx context.Context) ([]models.Product, error) {
	var resp listOf[models.Product]
	if err := c.doRequest(ctx, http.MethodGet, "/cakes", "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []models.Product{}, nil
	}
	return resp.Items, nil
}

// GetCake returns one cake.
func (c *Client) GetCake(ctx context.Context, id string) (*models.Product, error) {
	var resp oneOf[models.Product]
	if err := c.doRequest(ctx, http.MethodGet, "/cakes/"+url.PathEscape(id), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// CreateCake creates a cake. Requires an admin token.
func (c *Client) CreateCake(ctx context.Context, token string, in *models.CakeInput) (*models.Product, error) {
	var resp oneOf[models.Product]
	if err := c.doRequest(ctx, http.MethodPost, "/cakes", token, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// UpdateCake replaces a cake. Requires an admin token.
func (c *Client) UpdateCake(ctx context.Context, token, id string, in *models.CakeInput) (*models.Product, error) {
	var resp oneOf[models.Product]
	if err := c.doRequest(ctx, http.MethodPut, "/cakes/"+url.PathEscape(id), token, in, &resp); err != nil {
		return nil, err
	}
	if resp.Item.ID == "" {
		resp.Item.ID = id
	}
	return &resp.Item, nil
}

// DeleteCake removes a cake. Requires an admin token.
func (c *Client) DeleteCake(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/cakes/"+url.PathEscape(id), token, nil, nil)
}
