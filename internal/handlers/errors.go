package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YasminCastro/malucas-awards-v2/internal/middleware"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError writes the status and message that match err
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var (
		validation  *services.ValidationError
		phase       *services.PhaseError
		consistency *services.ConsistencyError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &phase):
		c.JSON(http.StatusForbidden, gin.H{"error": phase.Error()})
	case errors.Is(err, services.ErrPasswordCreationNotAvailable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &consistency):
		log.Error("ballot left inconsistent",
			"user_id", consistency.UserID,
			"request_id", middleware.RequestID(c),
			"error", consistency.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Your votes could not be saved, please try again"})
	default:
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", middleware.RequestID(c),
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pathID parses the ObjectID in the named path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryTop parses ?top=, returning def when absent
func queryTop(c *gin.Context, def int) (int, bool) {
	raw := c.Query("top")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a positive integer"})
		return 0, false
	}
	return n, true
}

// currentUserID returns the authenticated user and its parsed ID
func currentUserID(c *gin.Context) (string, primitive.ObjectID, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		return "", primitive.NilObjectID, false
	}
	return user.Handle, id, true
}
