package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

// RequireRole returns middleware that admits only actors holding one of
// roles. It must run after JWTAuth. Ownership of individual farms is checked
// by the use cases, which resolve every record through the caller's farmer.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": apperrors.CodeForbidden, "message": "not authenticated",
			})
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": apperrors.CodeForbidden, "message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
