// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

func setupRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/protected", middlewares...)
	group.GET("", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("user_role")
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	return r
}

func tokenFor(t *testing.T, role models.UserRole) string {
	t.Helper()
	utils.SetJWTSecrets("test-access", "test-refresh")
	token, err := utils.GenerateAccessToken(uuid.New(), "dana", string(role), 1)
	require.NoError(t, err)
	return token
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	token := tokenFor(t, models.UserRoleCustomer)
	r := setupRouter(AuthRequired())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CUSTOMER")
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	r := setupRouter(AuthRequired())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	token := tokenFor(t, models.UserRoleCustomer)
	r := setupRouter(AuthRequired())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsBadToken(t *testing.T) {
	utils.SetJWTSecrets("test-access", "test-refresh")
	r := setupRouter(AuthRequired())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	cases := []struct {
		role   models.UserRole
		status int
	}{
		{models.UserRoleAdmin, http.StatusOK},
		{models.UserRoleSeller, http.StatusForbidden},
		{models.UserRoleCustomer, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			token := tokenFor(t, tc.role)
			r := setupRouter(AuthRequired(), AdminRequired())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestSellerRequiredAdmitsSellerAndAdmin(t *testing.T) {
	cases := []struct {
		role   models.UserRole
		status int
	}{
		{models.UserRoleSeller, http.StatusOK},
		{models.UserRoleAdmin, http.StatusOK},
		{models.UserRoleCustomer, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			token := tokenFor(t, tc.role)
			r := setupRouter(AuthRequired(), SellerRequired())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestOptionalAuthPassesThroughAnonymous(t *testing.T) {
	r := setupRouter(OptionalAuth())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)
}

func TestOptionalAuthSetsIdentityWhenPresent(t *testing.T) {
	token := tokenFor(t, models.UserRoleSeller)
	r := setupRouter(OptionalAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SELLER")
}
