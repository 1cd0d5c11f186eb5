package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_storefront/internal/models"
	"github.com/GTDGit/bakery_storefront/internal/service"
	"github.com/GTDGit/bakery_storefront/internal/utils"
)

// ContactHandler accepts the public contact form.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit handles POST /v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var msg models.Contact
	if err := c.ShouldBindJSON(&msg); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return
	}
	if err := h.contacts.Submit(c.Request.Context(), msg); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Message sent", nil)
}
