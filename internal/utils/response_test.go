// internal/utils/response_test.go
package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
)

func performHandled(t *testing.T, err error) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	HandleError(c, err)

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleErrorValidation(t *testing.T) {
	err := apperrors.NewValidationError("insufficient stock",
		apperrors.FieldError{Field: "items", Message: "only 1 unit available"})

	w, body := performHandled(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "insufficient stock", body.Message)
	require.NotNil(t, body.Errors)
}

func TestHandleErrorStatusCoded(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NewNotFoundError("order"), http.StatusNotFound},
		{"conflict", apperrors.NewConflictError("already reviewed"), http.StatusConflict},
		{"unauthorized", apperrors.NewUnauthorizedError(""), http.StatusUnauthorized},
		{"forbidden", apperrors.NewForbiddenError("store is not approved"), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := performHandled(t, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHandleErrorGormMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := performHandled(t, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestHandleErrorJWT(t *testing.T) {
	w, body := performHandled(t, jwt.ErrTokenExpired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid or expired token", body.Message)
}

func TestHandleErrorUnknownIs500(t *testing.T) {
	w, body := performHandled(t, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessResponse(c, gin.H{"hello": "world"})

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
}

func TestPaginatedResponseSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	result := CreatePaginationResult([]string{"a", "b"}, 42, PaginationParams{Page: 2, Limit: 20})
	PaginatedResponse(c, result)

	assert.Equal(t, "42", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "2", w.Header().Get("X-Page"))
	assert.Equal(t, "20", w.Header().Get("X-Per-Page"))
	assert.Equal(t, "3", w.Header().Get("X-Total-Pages"))
}
