package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// AdminOrderHandler handles order management in the back-office.
type AdminOrderHandler struct {
	admin *service.AdminService
}

// NewAdminOrderHandler constructs an AdminOrderHandler.
func NewAdminOrderHandler(admin *service.AdminService) *AdminOrderHandler {
	return &AdminOrderHandler{admin: admin}
}

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required"`
}

// ListOrders handles GET /v1/admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	page, limit := pageParams(c, 50)
	orders, total, err := h.admin.ListOrders(c.Request.Context(), middleware.GetAdmin(c), service.OrderQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Orders retrieved", orders, page, min(limit, 200), total)
}

// GetOrder handles GET /v1/admin/orders/:id
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	order, err := h.admin.GetOrder(c.Request.Context(), middleware.GetAdmin(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order retrieved", order)
}

// UpdateStatus handles PATCH /v1/admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	if err := h.admin.UpdateOrderStatus(c.Request.Context(), middleware.GetAdmin(c), c.Param("id"), req.Status); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order status updated", gin.H{"id": c.Param("id"), "status": req.Status})
}

// UpdatePaymentStatus handles PATCH /v1/admin/orders/:id/payment-status
func (h *AdminOrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	if err := h.admin.UpdatePaymentStatus(c.Request.Context(), middleware.GetAdmin(c), c.Param("id"), req.PaymentStatus); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Payment status updated", gin.H{"id": c.Param("id"), "paymentStatus": req.PaymentStatus})
}

// DeleteOrder handles DELETE /v1/admin/orders/:id
func (h *AdminOrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.admin.DeleteOrder(c.Request.Context(), middleware.GetAdmin(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Order deleted successfully", nil)
}
