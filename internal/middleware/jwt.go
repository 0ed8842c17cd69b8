package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user id.
const ContextUserKey = "currentUser"

// Claims carries the token payload issued by the identity provider.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWT protects routes by requiring a valid access token signed with secret.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token"))
			c.Abort()
			return
		}
		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, userID)
		c.Next()
	}
}
