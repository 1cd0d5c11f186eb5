package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// SuccessWithPagination writes a success response with pagination metadata.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	// safety defaults
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
			Pagination: &Pagination{
				Page:       page,
				Limit:      limit,
				TotalItems: totalItems,
				TotalPages: totalPages,
			},
		},
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error: &ErrorInfo{
			Code:    errCode,
			Message: message,
		},
		Meta: Meta{
			RequestID: getRequestID(c),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// RespondError maps a service error onto the envelope. Unknown errors are
// logged and answered with 500.
func RespondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Code:    http.StatusUnprocessableEntity,
			Message: "Validation failed",
			Error: &ErrorInfo{
				Code:    ErrValidation.Error(),
				Message: "Validation failed",
				Fields:  verr.Fields,
			},
			Meta: Meta{
				RequestID: getRequestID(c),
				Timestamp: time.Now().Format(time.RFC3339),
			},
		})
	case errors.Is(err, ErrValidation):
		Error(c, http.StatusUnprocessableEntity, ErrValidation.Error(), err.Error())
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, ErrNotFound.Error(), "Resource not found")
	case errors.Is(err, ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, ErrInvalidCredentials.Error(), "Invalid email or password")
	case errors.Is(err, ErrInvalidToken):
		Error(c, http.StatusUnauthorized, ErrInvalidToken.Error(), "Invalid or expired token")
	case errors.Is(err, ErrInvalidSession):
		Error(c, http.StatusBadRequest, ErrInvalidSession.Error(), "Invalid cart session")
	case errors.Is(err, ErrEmptyCart):
		Error(c, http.StatusBadRequest, ErrEmptyCart.Error(), "Cart is empty")
	case errors.Is(err, ErrCheckoutInProgress):
		Error(c, http.StatusConflict, ErrCheckoutInProgress.Error(), "An order for this cart is already being placed")
	case errors.Is(err, ErrAssetsDisabled):
		Error(c, http.StatusServiceUnavailable, ErrAssetsDisabled.Error(), "Uploads are not configured")
	case errors.Is(err, ErrUpstream):
		log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Upstream request failed")
		Error(c, http.StatusBadGateway, ErrUpstream.Error(), "Bakery service unavailable")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
