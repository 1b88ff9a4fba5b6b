package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalContextKey = "innkeeper.principal"

// principal is the authenticated caller extracted from the access token.
// Tokens are issued elsewhere; this service only verifies them.
type principal struct {
	TenantID    string
	Subject     string
	Permissions []string
}

func (p principal) Can(permission string) bool {
	permission = strings.ToLower(strings.TrimSpace(permission))
	if permission == "" {
		return false
	}
	for _, granted := range p.Permissions {
		if strings.ToLower(granted) == permission || granted == "*" {
			return true
		}
	}
	return false
}

type accessClaims struct {
	TenantID    string   `json:"tid"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	Secret []byte
	Logger *slog.Logger
}

// Handle parses a bearer token when present and stores the principal on the
// request. Missing or invalid tokens fall through; route guards decide what
// requires auth.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || len(m.Secret) == 0 {
		c.Next()
		return
	}
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.Secret, nil
	})
	if err != nil || !parsed.Valid || claims.TenantID == "" {
		if m.Logger != nil {
			m.Logger.Debug("token rejected", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		TenantID:    claims.TenantID,
		Subject:     claims.Subject,
		Permissions: claims.Permissions,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// requirePermission resolves the principal and checks the permission, writing
// the 401/403 response itself on failure.
func requirePermission(c *gin.Context, permission string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if permission != "" && !p.Can(permission) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
