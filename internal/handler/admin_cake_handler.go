package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/middleware"
	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// AdminCakeHandler handles cake CRUD in the back-office.
type AdminCakeHandler struct {
	admin  *service.AdminService
	assets *service.AssetService
}

// NewAdminCakeHandler constructs an AdminCakeHandler.
func NewAdminCakeHandler(admin *service.AdminService, assets *service.AssetService) *AdminCakeHandler {
	return &AdminCakeHandler{admin: admin, assets: assets}
}

// ListCakes handles GET /v1/admin/cakes
func (h *AdminCakeHandler) ListCakes(c *gin.Context) {
	page, limit := pageParams(c, 50)
	cakes, total, err := h.admin.ListCakes(c.Request.Context(), service.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Cakes retrieved", cakes, page, min(limit, 200), total)
}

// GetCake handles GET /v1/admin/cakes/:id
func (h *AdminCakeHandler) GetCake(c *gin.Context) {
	cake, err := h.admin.GetCake(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cake retrieved", cake)
}

// CreateCake handles POST /v1/admin/cakes
func (h *AdminCakeHandler) CreateCake(c *gin.Context) {
	var in models.CakeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	cake, err := h.admin.CreateCake(c.Request.Context(), middleware.GetAdmin(c), &in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Cake created successfully", cake)
}

// UpdateCake handles PUT /v1/admin/cakes/:id
func (h *AdminCakeHandler) UpdateCake(c *gin.Context) {
	var in models.CakeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	cake, err := h.admin.UpdateCake(c.Request.Context(), middleware.GetAdmin(c), c.Param("id"), &in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cake updated successfully", cake)
}

// DeleteCake handles DELETE /v1/admin/cakes/:id
func (h *AdminCakeHandler) DeleteCake(c *gin.Context) {
	if err := h.admin.DeleteCake(c.Request.Context(), middleware.GetAdmin(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cake deleted successfully", nil)
}

// UploadImage handles POST /v1/admin/cakes/image (multipart field "file").
func (h *AdminCakeHandler) UploadImage(c *gin.Context) {
	url, err := uploadImage(c, h.assets, service.AssetFolderCakes)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Image uploaded", gin.H{"url": url})
}
