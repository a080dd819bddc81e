package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token issued by the identity provider
// and exposes the caller's employee id and role to the rest of the chain.
// The engines never see the token; they only receive the resolved identity.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			e := apperror.ErrUnauthorized
			response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			code := "INVALID_TOKEN"
			message := "Invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				code = "TOKEN_EXPIRED"
				message = "Token has expired"
			}
			response.Error(c, http.StatusUnauthorized, code, message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Employee ID not found in token", nil)
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set("employee_id", employeeID)
		c.Set("role", role)

		// Propagate to the standard context so services can resolve the
		// current caller without knowing about Gin.
		ctx := contextutil.WithEmployeeID(c.Request.Context(), employeeID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
