package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/model"
	"github.com/yourusername/todo-api/internal/storage"
)

// ContextUserKey is where RequireAuth stores the resolved user.
const ContextUserKey = "auth.user"

// RequireAuth returns a middleware that resolves the request's bearer
// token to a stored user. A missing, malformed or expired token, or a
// subject that no longer resolves to a user (stale token after account
// deletion), aborts with 401.
func RequireAuth(tokens *TokenManager, users *storage.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c)
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.FindByID(userID)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth. It must only be
// called from handlers behind that middleware.
func CurrentUser(c *gin.Context) *model.User {
	return c.MustGet(ContextUserKey).(*model.User)
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "UNAUTHENTICATED",
		"message": "could not validate credentials",
	})
}
