package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"koosdoos_back_end/internal/utils"
)

func adminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AuthRequired(secret), RequireAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})
	return r
}

func adminGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredAcceptsConfiguredSecret(t *testing.T) {
	// Le secret est celui de la config, pas une variable d'environnement
	// lue à l'init du package : un token émis au login doit passer.
	const secret = "secret-de-test"
	token, err := utils.GenerateAdminJWT("admin@koosdoos.co.za", secret)
	require.NoError(t, err)

	w := adminGet(adminRouter(secret), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@koosdoos.co.za")
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	token, err := utils.GenerateAdminJWT("admin@koosdoos.co.za", "autre-secret")
	require.NoError(t, err)

	w := adminGet(adminRouter("secret-de-test"), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	w := adminGet(adminRouter("secret-de-test"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
