package middleware

import (
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is a local interface; any package with a matching Enforce
// method satisfies it.
type RBACService interface {
	Enforce(role, resource, action string) (bool, error)
}

// RBACAuthorize gates a route on the caller's role. The engines behind the
// route trust the identity they receive; the capability check lives here.
func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("role")
		if !ok {
			e := apperror.ErrUnauthorized
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(role.(string), resource, action)
		if err != nil {
			e := apperror.ErrInternal
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		if !allowed {
			e := apperror.ErrForbidden
			response.Error(c, e.HTTPStatus, e.Code, e.Message, gin.H{
				"required": resource + ":" + action,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
