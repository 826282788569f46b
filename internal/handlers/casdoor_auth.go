package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eklavya-edu/assessment-service/internal/models"
	"github.com/eklavya-edu/assessment-service/internal/utils"
)

// Authenticator turns a bearer token into the caller it was issued to.
// repositories.UserRepository backed by Casdoor satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// CasdoorAuthMiddleware authenticates requests against Casdoor-issued JWTs
type CasdoorAuthMiddleware struct {
	auth   Authenticator
	logger utils.Logger
}

func NewCasdoorAuthMiddleware(auth Authenticator, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			writeError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := cam.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.GetLogger(c, cam.logger).Warn("Token rejected", "error", err)
			writeError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set("user_id", principal.UserID)
		c.Set("user", principal)
		c.Set("user_role", principal.Role)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if !slices.Contains(requiredRoles, role) {
			writeError(c, http.StatusForbidden, fmt.Sprintf("Forbidden: requires role %v", requiredRoles))
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// GetPrincipalFromContext extracts the authenticated caller from Gin context
func GetPrincipalFromContext(c *gin.Context) (*models.Principal, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	principal, ok := user.(*models.Principal)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return principal, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
