package auth

import "github.com/gin-gonic/gin"

// GetSubject returns the authenticated principal's subject or empty string.
func GetSubject(c *gin.Context) string {
	if v, ok := c.Get("authSubject"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRole returns the authenticated principal's role or empty string.
func GetRole(c *gin.Context) string {
	if v, ok := c.Get("authRole"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
