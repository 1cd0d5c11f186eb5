package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

func TestJWT_RoundTrip(t *testing.T) {
	session := models.AdminSession{Email: "admin@bakery.test", Name: "Admin", UpstreamToken: "up"}

	token, err := GenerateJWT("secret", time.Hour, session)
	require.NoError(t, err)

	claims, err := ValidateJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, session, claims.Session())
}

func TestJWT_Rejects(t *testing.T) {
	session := models.AdminSession{Email: "admin@bakery.test", UpstreamToken: "up"}

	token, err := GenerateJWT("secret", time.Hour, session)
	require.NoError(t, err)
	_, err = ValidateJWT("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWT("secret", -time.Minute, session)
	require.NoError(t, err)
	_, err = ValidateJWT("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateJWT("", time.Hour, session)
	assert.Error(t, err)
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.True(t, v.Empty())
	v.Add("customer.email", "must be a valid email")
	v.Add("customer.email", "ignored")
	v.Add("customer.name", "is required")

	var err error = v
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "must be a valid email", v.Fields["customer.email"])
	assert.Equal(t, "validation failed: customer.email: must be a valid email; customer.name: is required", err.Error())
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	v := NewValidationError()
	v.Add("items[0].customization.photoUrl", "photo is required")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation fields", v, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("cake x: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"upstream", fmt.Errorf("%w: timeout", ErrUpstream), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"empty cart", ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"assets", ErrAssetsDisabled, http.StatusServiceUnavailable, "ASSETS_DISABLED"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
			c.Set("request_id", "abcd1234")

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "abcd1234", resp.Meta.RequestID)
		})
	}
}

func TestRespondError_FieldsInBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/checkout", nil)

	v := NewValidationError()
	v.Add("customer.pincode", "must be 6 digits")
	RespondError(c, v)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"customer.pincode": "must be 6 digits"}, resp.Error.Fields)
}

func TestSuccessWithPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithPagination(c, http.StatusOK, "ok", []int{1, 2}, 2, 2, 5)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, 3, resp.Meta.Pagination.TotalPages)
	assert.Len(t, resp.Meta.RequestID, 8)
}
