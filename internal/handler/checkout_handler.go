package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// CheckoutHandler handles checkout, photo uploads and order tracking.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	assets   *service.AssetService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *service.CheckoutService, assets *service.AssetService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, assets: assets}
}

// Summary handles GET /v1/checkout/summary
func (h *CheckoutHandler) Summary(c *gin.Context) {
	totals, err := h.checkout.Summary(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Checkout summary", totals)
}

// Checkout handles POST /v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}

	res, err := h.checkout.Checkout(c.Request.Context(), middleware.GetCartSession(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Order placed successfully", res)
}

// UploadPhoto handles POST /v1/uploads/photo (multipart field "file").
func (h *CheckoutHandler) UploadPhoto(c *gin.Context) {
	url, err := uploadImage(c, h.assets, service.AssetFolderCustomizations)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Photo uploaded", gin.H{"url": url})
}

// ListOrders handles GET /v1/orders
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	receipts, err := h.checkout.Receipts(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Orders retrieved", receipts)
}

// TrackOrder handles GET /v1/orders/:id
func (h *CheckoutHandler) TrackOrder(c *gin.Context) {
	order, err := h.checkout.Track(c.Request.Context(), middleware.GetCartSession(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", order)
}

// uploadImage streams the multipart "file" field to the asset host.
func uploadImage(c *gin.Context, assets *service.AssetService, folder string) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		ve := utils.NewValidationError()
		ve.Add("file", "is required")
		return "", ve
	}
	f, err := fh.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return "", err
	}
	defer f.Close()

	return assets.Upload(c.Request.Context(), folder, f, fh.Size, fh.Header.Get("Content-Type"))
}
