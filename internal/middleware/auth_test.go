package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func accessClaims(uid, role string, verified bool, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"typ":            "access",
		"uid":            uid,
		"email":          uid + "@example.com",
		"email_verified": verified,
		"role":           role,
		"exp":            time.Now().Add(ttl).Unix(),
	}
}

func newTestRouter(m *AuthMiddleware, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	group := router.Group("/", m.Middleware())
	if admin {
		group.Use(m.RequireAdmin())
	}
	group.GET("/whoami", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": user.ID, "role": user.Role})
	})
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ValidToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	token := signToken(t, testSecret, accessClaims("user-1", "user", true, time.Hour))
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
}

func TestMiddleware_MissingHeader(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	token := signToken(t, testSecret, accessClaims("user-1", "user", true, time.Hour))
	rec := doRequest(router, "Token "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_WrongSecret(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	token := signToken(t, "other-secret", accessClaims("user-1", "user", true, time.Hour))
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	token := signToken(t, testSecret, accessClaims("user-1", "user", true, -time.Hour))
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RefreshTokenRejected(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, false)

	claims := accessClaims("user-1", "user", true, time.Hour)
	claims["typ"] = "refresh"
	token := signToken(t, testSecret, claims)
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	router := newTestRouter(m, true)

	adminToken := signToken(t, testSecret, accessClaims("admin-1", entity.RoleAdmin, true, time.Hour))
	rec := doRequest(router, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	userToken := signToken(t, testSecret, accessClaims("user-1", "user", true, time.Hour))
	rec = doRequest(router, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
