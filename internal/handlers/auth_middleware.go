package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/models"
)

const principalContextKey = "principal"

// AuthMiddleware verifies bearer tokens and attaches the resolved principal
// to the request context.
type AuthMiddleware struct {
	tokens   *auth.TokenService
	resolver *auth.PrincipalResolver
}

func NewAuthMiddleware(tokens *auth.TokenService, resolver *auth.PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver}
}

// Authenticate rejects requests without a valid bearer token. A token whose
// subject no longer exists is rejected too, so deleted accounts lose access
// immediately.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := am.tokens.Verify(parts[1])
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "Token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: message,
			})
			return
		}

		principal, err := am.resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownRole) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
					Message: "Unknown role",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Account no longer exists",
			})
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireRoles allows only the listed roles past this point. The main admin
// passes every gate.
func (am *AuthMiddleware) RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipalFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		if principal.Role == models.RoleMainAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

// RequireAdmin allows main and sub admins.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return am.RequireRoles(models.RoleMainAdmin, models.RoleSubAdmin)
}

// GetPrincipalFromContext returns the authenticated principal set by
// Authenticate.
func GetPrincipalFromContext(c *gin.Context) (*auth.Principal, error) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return nil, errors.New("principal not found in context")
	}
	principal, ok := value.(*auth.Principal)
	if !ok {
		return nil, errors.New("invalid principal type in context")
	}
	return principal, nil
}
