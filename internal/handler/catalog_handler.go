package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// CatalogHandler serves the public catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCakes handles GET /v1/cakes
func (h *CatalogHandler) ListCakes(c *gin.Context) {
	page, limit := pageParams(c, 20)
	q := service.ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	}

	cakes, total, err := h.catalog.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessWithPagination(c, http.StatusOK, "Cakes retrieved", cakes, page, min(limit, 100), total)
}

// GetCake handles GET /v1/cakes/:id
func (h *CatalogHandler) GetCake(c *gin.Context) {
	cake, err := h.catalog.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Cake retrieved", cake)
}

// Quote handles GET /v1/cakes/:id/quote?weight=&flavor=
func (h *CatalogHandler) Quote(c *gin.Context) {
	q, err := h.catalog.Quote(c.Request.Context(), c.Param("id"), c.Query("weight"), c.Query("flavor"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Price computed", q)
}

// Categories handles GET /v1/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Categories retrieved", categories)
}
