package helper

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractTokenFromHeaders pulls the bearer token from the Authorization
// header, falling back to the access_token cookie the login endpoint sets.
// Returns "" when no token is present.
func ExtractTokenFromHeaders(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	cookie, err := c.Cookie("access_token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(cookie, "Bearer "))
}
