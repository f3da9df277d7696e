package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowchain/flowchain/internal/models"
)

func newAuthRouter(t *testing.T, tokens *TokenManager, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := append([]gin.HandlerFunc{Middleware(tokens, "token")}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := CurrentUser(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestMiddlewareNoToken(t *testing.T) {
	router := newAuthRouter(t, NewTokenManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareCookie(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	router := newAuthRouter(t, tokens)

	token, err := tokens.Generate(&models.User{ID: "user-1", Role: models.RoleTeamMember})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestMiddlewareBearerHeader(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	router := newAuthRouter(t, tokens)

	token, err := tokens.Generate(&models.User{ID: "user-2", Role: models.RoleFinance})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-2")
}

func TestMiddlewareBadToken(t *testing.T) {
	router := newAuthRouter(t, NewTokenManager("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	router := newAuthRouter(t, tokens, RequireAdmin())

	adminToken, err := tokens.Generate(&models.User{ID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	memberToken, err := tokens.Generate(&models.User{ID: "member-1", Role: models.RoleTeamMember})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
