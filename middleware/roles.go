package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priya-tailors/priyas-tailoring-api/config"
	"github.com/priya-tailors/priyas-tailoring-api/models"
)

// ActAsRoleHeader lets an admin act as another role for one request. The
// effective role is carried in the request context only; there is no
// process-wide impersonation state.
const ActAsRoleHeader = "X-Act-As-Role"

// ResolveStaff loads the staff profile for the authenticated subject and
// stores it, together with the effective role, in the gin context. Must run
// after EnsureValidToken.
func ResolveStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		var staff models.Staff
		if err := db.Where("auth0_id = ?", auth0ID).First(&staff).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STAFF_NOT_FOUND",
					"message": "Staff profile not found. Please create a profile first.",
				},
			})
			c.Abort()
			return
		}

		effectiveRole := staff.Role
		if actAs := c.GetHeader(ActAsRoleHeader); actAs != "" {
			if staff.Role != models.RoleAdmin {
				c.JSON(http.StatusForbidden, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "FORBIDDEN",
						"message": "Only admins may act as another role",
					},
				})
				c.Abort()
				return
			}
			effectiveRole = actAs
		}

		c.Set("staff", staff)
		c.Set("effective_role", effectiveRole)
		c.Next()
	}
}

// GetStaff extracts the resolved staff profile from the gin context
func GetStaff(c *gin.Context) (models.Staff, error) {
	value, exists := c.Get("staff")
	if !exists {
		return models.Staff{}, &AuthError{Code: "MISSING_STAFF", Message: "Staff not found in context"}
	}
	staff, ok := value.(models.Staff)
	if !ok {
		return models.Staff{}, &AuthError{Code: "INVALID_STAFF", Message: "Staff is not in the expected format"}
	}
	return staff, nil
}

// GetEffectiveRole extracts the effective role (actual or acted-as) from
// the gin context
func GetEffectiveRole(c *gin.Context) (string, error) {
	value, exists := c.Get("effective_role")
	if !exists {
		return "", &AuthError{Code: "MISSING_ROLE", Message: "Effective role not found in context"}
	}
	role, ok := value.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_ROLE", Message: "Effective role is not a string"}
	}
	return role, nil
}

// RequireRoles aborts the request unless the effective role is one of the
// given roles. Admins always pass.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role, err := GetEffectiveRole(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_ROLE",
					"message": "Could not resolve effective role",
				},
			})
			c.Abort()
			return
		}
		if role != models.RoleAdmin && !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient role to access this resource",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
