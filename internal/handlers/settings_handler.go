package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YasminCastro/malucas-awards-v2/internal/middleware"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the voting phase
type SettingsHandler struct {
	settings *services.SettingsService
	gate     services.PhaseAuthorizer
	log      *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *services.SettingsService, gate services.PhaseAuthorizer, log *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		gate:     gate,
		log:      log,
	}
}

// GetVotingStatus handles GET /settings/voting-status. The answer may be cached.
func (h *SettingsHandler) GetVotingStatus(c *gin.Context) {
	settings, err := h.gate.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    settings.Phase,
		"eventDate": settings.EventDate,
	})
}

// GetSettings handles GET /admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var updatedBy string
	if user, ok := middleware.CurrentUser(c); ok {
		updatedBy = user.Handle
	}

	settings, err := h.settings.Update(c.Request.Context(), req, updatedBy)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("settings updated", "status", settings.Phase, "updated_by", updatedBy)
	c.JSON(http.StatusOK, settings)
}
