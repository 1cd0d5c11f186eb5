package bakeryapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// LoginResult is the answer to a successful admin login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		LoginResult
		AccessToken string `json:"accessToken"`
		Data        *struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		} `json:"data"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	out := resp.LoginResult
	if out.Token == "" {
		out.Token = resp.AccessToken
	}
	if out.Token == "" && resp.Data != nil {
		out.Token = resp.Data.Token
		out.User = resp.Data.User
	}
	if out.Token == "" {
		return nil, errors.New("bakery api: login response without token")
	}
	if out.User.Email == "" {
		out.User.Email = email
	}
	return &out, nil
}

// ListUsers returns every registered user.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var resp listOf[models.User]
	if err := c.doRequest(ctx, http.MethodGet, "/users", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []models.User{}, nil
	}
	return resp.Items, nil
}

// GetUser returns one user.
func (c *Client) GetUser(ctx context.Context, token, id string) (*models.User, error) {
	var resp oneOf[models.User]
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(id), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil, nil)
}

// SubmitContact posts a public contact form message.
func (c *Client) SubmitContact(ctx context.Context, msg *models.Contact) error {
	return c.doRequest(ctx, http.MethodPost, "/contacts", "", msg, nil)
}

// ListContacts returns every contact message.
func (c *Client) ListContacts(ctx context.Context, token string) ([]models.Contact, error) {
	var resp listOf[models.Contact]
	if err := c.doRequest(ctx, http.MethodGet, "/contacts", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []models.Contact{}, nil
	}
	return resp.Items, nil
}

// DeleteContact removes a contact message.
func (c *Client) DeleteContact(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), token, nil, nil)
}
