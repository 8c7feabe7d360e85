package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextKeyApprover is the opaque approver identity for the request.
	ContextKeyApprover = "approver"
	// AnonymousApprover is used when no valid bearer token is present.
	AnonymousApprover = "anonymous"
)

// ApproverIdentity extracts the approver identity from a bearer token's
// subject claim. There is no user management; an absent or invalid
// token degrades to the anonymous identity rather than rejecting.
func ApproverIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyApprover, identityFromHeader(c.GetHeader("Authorization"), secret))
		c.Next()
	}
}

func identityFromHeader(authHeader, secret string) string {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return AnonymousApprover
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return AnonymousApprover
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return AnonymousApprover
	}
	return sub
}

// GetApprover extracts the approver identity from the Gin context.
func GetApprover(c *gin.Context) string {
	val, exists := c.Get(ContextKeyApprover)
	if !exists {
		return AnonymousApprover
	}
	return val.(string)
}
