package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
)

// SuggestionHandler handles category suggestions
type SuggestionHandler struct {
	suggestionService *services.SuggestionService
	log               *slog.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggestionService *services.SuggestionService, log *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		log:               log,
	}
}

// List handles GET /category-suggestions. The list may be cached.
func (h *SuggestionHandler) List(c *gin.Context) {
	suggestions, err := h.suggestionService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Create handles POST /category-suggestions
func (h *SuggestionHandler) Create(c *gin.Context) {
	var req models.CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggesterName and categoryName are required"})
		return
	}

	suggestion, err := h.suggestionService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, suggestion)
}

// AddParticipants handles PUT /category-suggestions/:id/participants
func (h *SuggestionHandler) AddParticipants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AddParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	suggestion, err := h.suggestionService.AddParticipants(c.Request.Context(), id, req.Participants)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// AdminList handles GET /admin/category-suggestions. It always reads the store.
func (h *SuggestionHandler) AdminList(c *gin.Context) {
	suggestions, err := h.suggestionService.ListFresh(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// UpdateStatus handles PUT /admin/category-suggestions/:id
func (h *SuggestionHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.SuggestionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	suggestion, err := h.suggestionService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// Update handles PATCH /admin/category-suggestions/:id
func (h *SuggestionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	suggestion, err := h.suggestionService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// Delete handles DELETE /admin/category-suggestions/:id
func (h *SuggestionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.suggestionService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
