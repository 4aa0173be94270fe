package testutil

import (
	"github.com/gin-gonic/gin"
)

// SetMockAuthContext stands in for the token-validation middleware: it
// stores the token subject the way EnsureValidToken does, so everything
// downstream (staff resolution, role checks) runs for real.
func SetMockAuthContext(c *gin.Context, userID string) {
	c.Set("user_id", userID)
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
