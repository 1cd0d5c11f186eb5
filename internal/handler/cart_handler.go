package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/cart"
	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// CartHandler exposes the cart of the request's cart session.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart handles GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.carts.Get(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cart retrieved", snap)
}

// AddItem handles POST /v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	snap, err := h.carts.AddItem(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Item added", snap)
}

// Increase handles POST /v1/cart/items/increase
func (h *CartHandler) Increase(c *gin.Context) {
	h.withKey(c, "Quantity increased", h.carts.Increase)
}

// Decrease handles POST /v1/cart/items/decrease
func (h *CartHandler) Decrease(c *gin.Context) {
	h.withKey(c, "Quantity decreased", h.carts.Decrease)
}

// RemoveItem handles DELETE /v1/cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.withKey(c, "Item removed", h.carts.Remove)
}

// ChangeVariant handles PUT /v1/cart/items/variant
func (h *CartHandler) ChangeVariant(c *gin.Context) {
	var req service.ChangeVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	snap, err := h.carts.ChangeVariant(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Item variant changed", snap)
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	snap, err := h.carts.Clear(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cart cleared", snap)
}

type keyedCartOp func(ctx context.Context, session string, key models.CartKey) (cart.Snapshot, error)

func (h *CartHandler) withKey(c *gin.Context, message string, op keyedCartOp) {
	var key models.CartKey
	if err := c.ShouldBindJSON(&key); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	snap, err := op(c.Request.Context(), middleware.GetCartSession(c), key)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, message, snap)
}
