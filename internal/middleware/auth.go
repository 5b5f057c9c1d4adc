package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pollboard/pollboard/internal/entity"
)

// UserKey is the gin context key under which Middleware stores the caller's
// identity.
const UserKey = "user"

// AuthMiddleware validates access tokens issued by the external identity
// provider. Tokens are HS256 JWTs carrying uid, email, email_verified, role,
// typ and exp claims; validation happens locally against the shared secret.
type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractTokenFromHeader(c.GetHeader("Authorization"))
		if accessToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		user, err := m.parseToken(accessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireAdmin aborts requests whose identity lacks the admin role. It must
// run after Middleware.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin rights required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity stored by Middleware.
func CurrentUser(c *gin.Context) (entity.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return entity.User{}, false
	}
	user, ok := value.(entity.User)
	return user, ok
}

func (m *AuthMiddleware) parseToken(accessToken string) (entity.User, error) {
	const op = "middleware.parseToken"

	token, err := jwt.ParseWithClaims(accessToken, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return entity.User{}, fmt.Errorf("%s: invalid token: %w", op, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return entity.User{}, fmt.Errorf("%s: invalid token claims", op)
	}

	if typ, ok := claims["typ"].(string); !ok || typ != "access" {
		return entity.User{}, fmt.Errorf("%s: invalid token type: expected access, got %v", op, claims["typ"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return entity.User{}, fmt.Errorf("%s: exp claim is missing or invalid", op)
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return entity.User{}, fmt.Errorf("%s: token is expired", op)
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return entity.User{}, fmt.Errorf("%s: uid claim missing or invalid", op)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return entity.User{}, fmt.Errorf("%s: email claim missing or invalid", op)
	}

	verified, _ := claims["email_verified"].(bool)
	role, _ := claims["role"].(string)

	return entity.User{
		ID:            uid,
		Email:         email,
		EmailVerified: verified,
		Role:          role,
	}, nil
}

func extractTokenFromHeader(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
