package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// AdminUserHandler handles users, contact messages and the dashboard.
type AdminUserHandler struct {
	admin     *service.AdminService
	dashboard *service.DashboardService
}

// NewAdminUserHandler constructs an AdminUserHandler.
func NewAdminUserHandler(admin *service.AdminService, dashboard *service.DashboardService) *AdminUserHandler {
	return &AdminUserHandler{admin: admin, dashboard: dashboard}
}

// ListUsers handles GET /v1/admin/users
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c, 50)
	users, total, err := h.admin.ListUsers(c.Request.Context(), middleware.GetAdmin(c), c.Query("search"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Users retrieved", users, page, min(limit, 200), total)
}

// GetUser handles GET /v1/admin/users/:id
func (h *AdminUserHandler) GetUser(c *gin.Context) {
	user, err := h.admin.GetUser(c.Request.Context(), middleware.GetAdmin(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User retrieved", user)
}

// DeleteUser handles DELETE /v1/admin/users/:id
func (h *AdminUserHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), middleware.GetAdmin(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "User deleted successfully", nil)
}

// ListContacts handles GET /v1/admin/contacts
func (h *AdminUserHandler) ListContacts(c *gin.Context) {
	page, limit := pageParams(c, 50)
	contacts, total, err := h.admin.ListContacts(c.Request.Context(), middleware.GetAdmin(c), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Contacts retrieved", contacts, page, min(limit, 200), total)
}

// DeleteContact handles DELETE /v1/admin/contacts/:id
func (h *AdminUserHandler) DeleteContact(c *gin.Context) {
	if err := h.admin.DeleteContact(c.Request.Context(), middleware.GetAdmin(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Contact deleted successfully", nil)
}

// Dashboard handles GET /v1/admin/dashboard?days=
func (h *AdminUserHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), middleware.GetAdmin(c), queryInt(c, "days", 7))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Dashboard retrieved", stats)
}
