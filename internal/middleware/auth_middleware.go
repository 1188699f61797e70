package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/pkg/jwt"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	currentUserKey = "currentUser"
	authErrorKey   = "authError"
)

// Authenticator turns a session token into the request principal
type Authenticator interface {
	Authenticate(token string) (*models.CurrentUser, error)
}

// AdminChecker reads the admin flag of a user from the store
type AdminChecker interface {
	IsAdmin(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// AuthMiddleware attaches the current user when the request carries a valid
// token, either in the session cookie or as a Bearer header. Requests
// without a token, or with one that fails to verify, pass through
// anonymously; RequireAuth and RequireAdmin turn them away.
func AuthMiddleware(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.Set(authErrorKey, "Token has expired")
			} else {
				c.Set(authErrorKey, "Invalid token")
			}
			c.Next()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	const bearerSchema = "Bearer "
	if !strings.HasPrefix(header, bearerSchema) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerSchema):])
}

// CurrentUser returns the principal set by AuthMiddleware
func CurrentUser(c *gin.Context) (*models.CurrentUser, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.CurrentUser)
	return user, ok
}

// SetCurrentUser attaches a principal, mostly for handler tests
func SetCurrentUser(c *gin.Context, user *models.CurrentUser) {
	c.Set(currentUserKey, user)
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			abortUnauthenticated(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from users who are not admins right now.
// The flag is re-read from the store, so a demoted admin loses access at once.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		id, err := primitive.ObjectIDFromHex(user.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		isAdmin, err := checker.IsAdmin(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify permissions"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return
		}
		c.Next()
	}
}

// abortUnauthenticated answers 401, naming the token problem when there was one
func abortUnauthenticated(c *gin.Context) {
	message := c.GetString(authErrorKey)
	if message == "" {
		message = "Not authenticated"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
